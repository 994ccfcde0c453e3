package interactionsparser

import (
	"fmt"
	"strings"

	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

// SystemPrompt is sent as the system message on every generator call.
const SystemPrompt = "You are a helpful clinical pharmacist."

// NoInteractionSentence is the exact fallback the generator is directed
// to emit when it finds no interaction. The parser detects it by the
// leading block-quote marker.
const NoInteractionSentence = "> No known interactions were found between these medications. Always check with a doctor or pharmacist."

const interactionPromptTemplate = `You are a licensed clinical pharmacist tasked with explaining potential drug interactions to patients in plain English.

The patient has listed the following medications: %s

Your job is to:

1. Identify if there are any known drug interactions among these medications.
2. For each interaction, describe what happens (the mechanism), rate the severity as mild, moderate or severe, explain possible symptoms or consequences the patient might experience, and suggest a safer alternative or precautions (e.g., spacing doses, consulting a doctor).
3. Use simple, clear language without medical jargon.
4. If any medication name is unclear or unknown, politely mention it and recommend verifying with a healthcare professional.

Format the response strictly as follows. Do not use code blocks, bullet points or extra blank lines. Number the interactions starting at 1 and separate interaction blocks with exactly one blank line:

**Interaction 1**: {Drug A} + {Drug B}
**Severity**: {mild/moderate/severe}
**What happens**: {brief mechanism}
**Risks or symptoms**: {patient-friendly explanation}
**Advice**: {recommendation or safer alternative}

If there are no known interactions, respond with exactly:
%s

Begin when ready.`

const drugInfoPromptTemplate = `You are a licensed clinical pharmacist giving a patient plain-English information about one medication.

The medication is: %s

The patient is %d years old, %.1f cm tall, weighs %.1f kg and has a BMI of %.1f. %s

Explain the medication for this specific patient. Use simple, clear language without medical jargon.

Format the response strictly as follows. Do not use code blocks, bullet points or extra blank lines. Emit each section header on its own line, exactly as written:

**Description**: {what the medication is and how it works}
**Uses**: {what it is prescribed for}
**Names**: {common brand and generic names}
**Dosage**: {typical adult dosage}
**Personalized Dose**: {dosage guidance adjusted for this patient's age, weight and BMI}
**Side Effects**: {common and important side effects}
%s
Begin when ready.`

const pregnancySectionInstruction = "**Pregnancy**: {safety considerations during pregnancy}\n"

// BuildInteractionPrompt renders the instruction prompt for an
// interaction query. Medication names are trimmed and joined with ", ";
// names that are blank after trimming are dropped, and ErrEmptyInput is
// returned when nothing is left.
func BuildInteractionPrompt(medications []string) (string, error) {
	meds := make([]string, 0, len(medications))
	for _, m := range medications {
		if t := strings.TrimSpace(m); t != "" {
			meds = append(meds, t)
		}
	}
	if len(meds) == 0 {
		return "", ErrEmptyInput
	}

	return fmt.Sprintf(interactionPromptTemplate, strings.Join(meds, ", "), NoInteractionSentence), nil
}

// BuildDrugInfoPrompt renders the instruction prompt for a single-drug
// information query personalized by the biometric profile. The Pregnancy
// section is requested only for pregnant profiles: the generator has no
// way to suppress a section after the fact, so the instruction itself is
// conditional. BMI is computed here, never taken from the caller.
func BuildDrugInfoPrompt(medication string, profile entities.BiometricProfile) (string, error) {
	med := strings.TrimSpace(medication)
	if med == "" {
		return "", ErrEmptyInput
	}

	bmi, err := profile.BMI()
	if err != nil {
		return "", err
	}

	pregnancySentence := "The patient is not pregnant."
	pregnancySection := ""
	if profile.IsPregnant {
		pregnancySentence = "The patient is currently pregnant."
		pregnancySection = pregnancySectionInstruction
	}

	return fmt.Sprintf(drugInfoPromptTemplate,
		med,
		profile.AgeYears,
		profile.HeightCm,
		profile.WeightKg,
		bmi,
		pregnancySentence,
		pregnancySection,
	), nil
}
