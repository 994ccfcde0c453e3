package interactionsparser

import (
	"testing"

	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

func TestParseInteractions_NoInteractionSentinel(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"Canonical sentence", "> No known interactions were found between these medications. Always check with a doctor or pharmacist."},
		{"Leading whitespace", "  \n\n> Nothing to report."},
		{"Bare marker", ">"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := ParseInteractions(tc.text)

			if report.NoInteraction == nil {
				t.Fatal("Expected NoInteraction sentinel")
			}
			if len(report.Interactions) != 0 {
				t.Errorf("Expected zero interaction records, got %d", len(report.Interactions))
			}
			if report.Malformed {
				t.Error("No-interaction response must not be flagged malformed")
			}
			if report.NoInteraction.Message == "" && tc.text != ">" {
				t.Error("Sentinel message is empty")
			}
		})
	}
}

func TestParseInteractions_WellFormedBlocks(t *testing.T) {
	text := "**Interaction 1**: Aspirin + Warfarin\n" +
		"**Severity**: severe\n" +
		"**What happens**: additive anticoagulation\n" +
		"**Risks or symptoms**: easy bruising and bleeding\n" +
		"**Advice**: consult your doctor\n" +
		"\n" +
		"**Interaction 2**: Aspirin + Ibuprofen\n" +
		"**Severity**: moderate\n" +
		"**What happens**: competing platelet effects\n" +
		"**Risks or symptoms**: stomach irritation\n" +
		"**Advice**: space the doses"

	report := ParseInteractions(text)

	if report.NoInteraction != nil {
		t.Fatal("Unexpected NoInteraction sentinel")
	}
	if report.Malformed {
		t.Fatal("Well-formed input flagged malformed")
	}
	if len(report.Interactions) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(report.Interactions))
	}

	for i, rec := range report.Interactions {
		if rec.Ordinal != i+1 {
			t.Errorf("Record %d has ordinal %d, expected %d", i, rec.Ordinal, i+1)
		}
		if rec.DrugPair == "" || rec.Severity == "" || rec.Mechanism == "" || rec.Risks == "" || rec.Advice == "" {
			t.Errorf("Record %d has an unexpected empty field: %+v", i, rec)
		}
	}

	first := report.Interactions[0]
	if first.DrugPair != "Aspirin + Warfarin" {
		t.Errorf("DrugPair = %q, expected %q", first.DrugPair, "Aspirin + Warfarin")
	}
	if first.Severity != "severe" {
		t.Errorf("Severity = %q, expected %q", first.Severity, "severe")
	}
	if first.Mechanism != "additive anticoagulation" {
		t.Errorf("Mechanism = %q", first.Mechanism)
	}
}

func TestParseInteractions_NormalizedRawResponse(t *testing.T) {
	// The worked example from the public contract: raw generator output
	// with lowercase drug names and a title-case severity.
	raw := "**Interaction 1**: aspirin + warfarin\n" +
		"**Severity**: severe\n" +
		"**What happens**: bleeding risk\n" +
		"**Risks or symptoms**: bruising\n" +
		"**Advice**: consult doctor"

	report := ParseInteractions(Normalize(raw))

	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}

	got := report.Interactions[0]
	expected := struct {
		ordinal   int
		drugPair  string
		severity  string
		mechanism string
		risks     string
		advice    string
	}{1, "Aspirin + Warfarin", "severe", "bleeding risk", "bruising", "consult doctor"}

	if got.Ordinal != expected.ordinal {
		t.Errorf("Ordinal = %d, expected %d", got.Ordinal, expected.ordinal)
	}
	if got.DrugPair != expected.drugPair {
		t.Errorf("DrugPair = %q, expected %q", got.DrugPair, expected.drugPair)
	}
	if got.Severity != expected.severity {
		t.Errorf("Severity = %q, expected %q", got.Severity, expected.severity)
	}
	if got.Mechanism != expected.mechanism {
		t.Errorf("Mechanism = %q, expected %q", got.Mechanism, expected.mechanism)
	}
	if got.Risks != expected.risks {
		t.Errorf("Risks = %q, expected %q", got.Risks, expected.risks)
	}
	if got.Advice != expected.advice {
		t.Errorf("Advice = %q, expected %q", got.Advice, expected.advice)
	}
}

func TestParseInteractions_RoundTripThroughNormalizer(t *testing.T) {
	raw := "**Interaction 1**: aspirin +  warfarin  \n" +
		"**Severity**:  SEVERE\n\n\n" +
		"**What happens**: Bleeding  risk increases\n" +
		"**Risks or symptoms**: bruising\n" +
		"**Advice**: consult  doctor"

	report := ParseInteractions(Normalize(raw))
	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}

	rec := report.Interactions[0]
	if rec.DrugPair != "Aspirin + Warfarin" {
		t.Errorf("DrugPair = %q", rec.DrugPair)
	}
	if rec.Severity != "severe" {
		t.Errorf("Severity = %q", rec.Severity)
	}
	if rec.Mechanism != "Bleeding risk increases" {
		t.Errorf("Mechanism = %q", rec.Mechanism)
	}
	if rec.Risks != "bruising" {
		t.Errorf("Risks = %q", rec.Risks)
	}
	if rec.Advice != "consult doctor" {
		t.Errorf("Advice = %q", rec.Advice)
	}
}

func TestParseInteractions_MissingFieldsStayEmpty(t *testing.T) {
	text := "**Interaction 3**: Aspirin + Metformin\n**Severity**: mild"

	report := ParseInteractions(text)
	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}

	rec := report.Interactions[0]
	if rec.Ordinal != 3 {
		t.Errorf("Ordinal = %d, expected 3 (kept as emitted, not reassigned)", rec.Ordinal)
	}
	if rec.Mechanism != "" || rec.Risks != "" || rec.Advice != "" {
		t.Errorf("Missing fields must stay empty strings, got %+v", rec)
	}
}

func TestParseInteractions_UnrecognizedSeverityBecomesUnknown(t *testing.T) {
	text := "**Interaction 1**: Aspirin + Warfarin\n**Severity**: moderate to severe"

	report := ParseInteractions(text)
	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}
	if got := report.Interactions[0].Severity; got != "unknown" {
		t.Errorf("Severity = %q, expected %q", got, "unknown")
	}
}

func TestParseInteractions_NoiseLinesIgnored(t *testing.T) {
	text := "Here is what I found for you:\n\n" +
		"**Interaction 1**: Aspirin + Warfarin\n" +
		"**Severity**: severe\n\n" +
		"Stay safe!"

	report := ParseInteractions(text)
	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}
}

func TestParseInteractions_MalformedInput(t *testing.T) {
	testCases := []struct {
		name string
		text string
	}{
		{"Plain prose", "I could not determine any structured interactions."},
		{"Empty string", ""},
		{"Whitespace only", "   \n\n\t  "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := ParseInteractions(tc.text)

			if !report.Malformed {
				t.Error("Expected Malformed flag")
			}
			if len(report.Interactions) != 0 || report.NoInteraction != nil {
				t.Errorf("Expected empty report, got %+v", report)
			}
		})
	}
}

func TestParseInteractions_BulletedFieldsTolerated(t *testing.T) {
	// Older grammar revisions bulleted the field lines.
	text := "**Interaction 1**: Aspirin + Warfarin\n" +
		"- **Severity**: severe\n" +
		"- **What happens**: bleeding risk\n" +
		"- **Risks or symptoms**: bruising\n" +
		"- **Advice**: consult doctor"

	report := ParseInteractions(text)
	if len(report.Interactions) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(report.Interactions))
	}

	rec := report.Interactions[0]
	if rec.Severity != "severe" || rec.Mechanism != "bleeding risk" || rec.Risks != "bruising" || rec.Advice != "consult doctor" {
		t.Errorf("Bulleted fields parsed incorrectly: %+v", rec)
	}
}

func TestParseDrugInfo_AllSections(t *testing.T) {
	text := "**Description**: A common pain reliever.\n" +
		"**Uses**: Headaches and fever.\n" +
		"**Names**: Tylenol, paracetamol.\n" +
		"**Dosage**: 500 mg every 6 hours.\n" +
		"**Personalized Dose**: Given your weight, stay at 500 mg.\n" +
		"**Side Effects**: Rare at normal doses.\n" +
		"**Pregnancy**: Generally considered safe."

	report := ParseDrugInfo(text)
	if report.Malformed {
		t.Fatal("Well-formed input flagged malformed")
	}

	info := report.Info
	if info.Description != "A common pain reliever." {
		t.Errorf("Description = %q", info.Description)
	}
	if info.Uses != "Headaches and fever." {
		t.Errorf("Uses = %q", info.Uses)
	}
	if info.Names != "Tylenol, paracetamol." {
		t.Errorf("Names = %q", info.Names)
	}
	if info.Dosage != "500 mg every 6 hours." {
		t.Errorf("Dosage = %q", info.Dosage)
	}
	if info.PersonalizedDose != "Given your weight, stay at 500 mg." {
		t.Errorf("PersonalizedDose = %q", info.PersonalizedDose)
	}
	if info.SideEffects != "Rare at normal doses." {
		t.Errorf("SideEffects = %q", info.SideEffects)
	}
	if info.Pregnancy != "Generally considered safe." {
		t.Errorf("Pregnancy = %q", info.Pregnancy)
	}
}

func TestParseDrugInfo_MultiLineBodyCollapsed(t *testing.T) {
	text := "**Description**: A common pain reliever\n" +
		"that works in the central nervous system\n" +
		"and reduces fever.\n" +
		"**Uses**: Headaches."

	report := ParseDrugInfo(text)

	expected := "A common pain reliever that works in the central nervous system and reduces fever."
	if report.Info.Description != expected {
		t.Errorf("Description = %q, expected %q", report.Info.Description, expected)
	}
	if report.Info.Uses != "Headaches." {
		t.Errorf("Uses = %q", report.Info.Uses)
	}
}

func TestParseDrugInfo_MissingPregnancyStaysEmpty(t *testing.T) {
	// Prompt omission governs this field: even when the request came
	// from a pregnant profile, text without the header yields "".
	text := "**Description**: A drug.\n**Uses**: Things."

	report := ParseDrugInfo(text)
	if report.Info.Pregnancy != "" {
		t.Errorf("Pregnancy = %q, expected empty", report.Info.Pregnancy)
	}
}

func TestParseDrugInfo_UnknownHeaderAbsorbedIntoPreviousBody(t *testing.T) {
	text := "**Description**: A drug.\n**Chemistry**: C8H9NO2.\n**Uses**: Pain."

	report := ParseDrugInfo(text)

	if report.Info.Description != "A drug. **Chemistry**: C8H9NO2." {
		t.Errorf("Description = %q", report.Info.Description)
	}
	if report.Info.Uses != "Pain." {
		t.Errorf("Uses = %q", report.Info.Uses)
	}
}

func TestParseDrugInfo_MalformedInput(t *testing.T) {
	report := ParseDrugInfo("nothing structured in here")

	if !report.Malformed {
		t.Error("Expected Malformed flag")
	}
	if report.Info != (entities.DrugInfoRecord{}) {
		t.Errorf("Expected empty record, got %+v", report.Info)
	}
}
