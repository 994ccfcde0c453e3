package interactionsparser

import (
	"strings"

	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

// ParseInteractions segments a normalized interaction response into
// typed records. It is a total function: no input fails, the worst
// outcome is an empty report with the Malformed flag set so the caller
// can fall back to showing the raw text.
//
// Text beginning with the block-quote marker is the no-interaction
// sentence and short-circuits to the sentinel record. Otherwise each
// line is classified by its header prefix; lines matching nothing are
// noise and ignored, and fields the generator omitted stay empty.
func ParseInteractions(text string) entities.InteractionReport {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, ">") {
		return entities.InteractionReport{
			NoInteraction: &entities.NoInteractionRecord{Message: trimmed},
		}
	}

	var records []entities.InteractionRecord
	var current *entities.InteractionRecord

	// Field lines arriving before any interaction header open an
	// anonymous record so their content is not silently dropped.
	ensure := func() *entities.InteractionRecord {
		if current == nil {
			records = append(records, entities.InteractionRecord{})
			current = &records[len(records)-1]
		}
		return current
	}

	for _, raw := range strings.Split(text, "\n") {
		line := trimBullet(raw)
		if line == "" {
			continue
		}

		if ordinal, pair, ok := parseInteractionHeader(line); ok {
			records = append(records, entities.InteractionRecord{
				Ordinal:  ordinal,
				DrugPair: pair,
			})
			current = &records[len(records)-1]
			continue
		}

		switch {
		case strings.HasPrefix(line, headerSeverity):
			ensure().Severity = entities.NormalizeSeverity(fieldValue(line, headerSeverity))
		case strings.HasPrefix(line, headerWhatHappens):
			ensure().Mechanism = fieldValue(line, headerWhatHappens)
		case strings.HasPrefix(line, headerRisks):
			ensure().Risks = fieldValue(line, headerRisks)
		case strings.HasPrefix(line, headerAdvice):
			ensure().Advice = fieldValue(line, headerAdvice)
		}
	}

	if len(records) == 0 {
		return entities.InteractionReport{Malformed: true}
	}
	return entities.InteractionReport{Interactions: records}
}

// drugInfoField maps a section header to its field in the record.
func drugInfoField(rec *entities.DrugInfoRecord, header string) *string {
	switch header {
	case headerDescription:
		return &rec.Description
	case headerUses:
		return &rec.Uses
	case headerNames:
		return &rec.Names
	case headerDosage:
		return &rec.Dosage
	case headerPersonalizedDose:
		return &rec.PersonalizedDose
	case headerSideEffects:
		return &rec.SideEffects
	case headerPregnancy:
		return &rec.Pregnancy
	}
	return nil
}

// ParseDrugInfo segments a normalized drug-information response into a
// flat record. All seven headers are matched in a single line scan, so
// header text is never mistaken for body content. Body lines following
// a header are collapsed into one logical line; unrecognized headers are
// absorbed into the previous section's body, which keeps unknown future
// labels from vanishing. Total like ParseInteractions: never errors.
func ParseDrugInfo(text string) entities.DrugInfoReport {
	var rec entities.DrugInfoRecord
	var current *string
	found := false

	for _, raw := range strings.Split(text, "\n") {
		line := trimBullet(raw)
		if line == "" {
			continue
		}

		matched := false
		for _, h := range drugInfoHeaders {
			if strings.HasPrefix(line, h) {
				current = drugInfoField(&rec, h)
				*current = fieldValue(line, h)
				found = true
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != nil {
			body := strings.TrimSpace(raw)
			if *current != "" && body != "" {
				*current += " "
			}
			*current += body
		}
	}

	return entities.DrugInfoReport{Info: rec, Malformed: !found}
}
