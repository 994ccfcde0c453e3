// Package interactionsparser builds the instruction prompts sent to the
// generative text service and turns its free-text answers back into
// structured records. The output grammar the prompts demand and the
// parser recognizes live together in this package so they cannot drift
// apart.
package interactionsparser

import (
	"strconv"
	"strings"
)

// Section headers of the interaction response grammar.
const (
	headerInteraction = "**Interaction"
	headerSeverity    = "**Severity**:"
	headerWhatHappens = "**What happens**:"
	headerRisks       = "**Risks or symptoms**:"
	headerAdvice      = "**Advice**:"
)

// Section headers of the drug-information response grammar.
const (
	headerDescription      = "**Description**:"
	headerUses             = "**Uses**:"
	headerNames            = "**Names**:"
	headerDosage           = "**Dosage**:"
	headerPersonalizedDose = "**Personalized Dose**:"
	headerSideEffects      = "**Side Effects**:"
	headerPregnancy        = "**Pregnancy**:"
)

var fieldHeaders = []string{
	headerSeverity,
	headerWhatHappens,
	headerRisks,
	headerAdvice,
}

var drugInfoHeaders = []string{
	headerDescription,
	headerUses,
	headerNames,
	headerDosage,
	headerPersonalizedDose,
	headerSideEffects,
	headerPregnancy,
}

// trimBullet strips list markup the generator sometimes adds in front of
// a header despite being instructed not to. "**" itself is left alone.
func trimBullet(line string) string {
	s := strings.TrimSpace(line)
	for {
		switch {
		case strings.HasPrefix(s, "- "):
			s = strings.TrimSpace(s[2:])
		case strings.HasPrefix(s, "* ") && !strings.HasPrefix(s, "**"):
			s = strings.TrimSpace(s[2:])
		default:
			return s
		}
	}
}

// isHeaderLine reports whether the line starts with any recognized header.
func isHeaderLine(line string) bool {
	s := trimBullet(line)
	if strings.HasPrefix(s, headerInteraction) {
		return true
	}
	for _, h := range fieldHeaders {
		if strings.HasPrefix(s, h) {
			return true
		}
	}
	for _, h := range drugInfoHeaders {
		if strings.HasPrefix(s, h) {
			return true
		}
	}
	return false
}

// hasRecognizedHeader reports whether any line of the text carries a
// recognized header. Text without one is opaque to the whole pipeline.
func hasRecognizedHeader(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if isHeaderLine(line) {
			return true
		}
	}
	return false
}

// parseInteractionHeader extracts the ordinal and drug pair from an
// interaction header line such as "**Interaction 1**: Aspirin + Warfarin".
// The older "**Interaction 1:**" placement of the colon is tolerated.
// The ordinal is kept exactly as emitted, never reassigned; a header
// without digits yields ordinal 0.
func parseInteractionHeader(line string) (ordinal int, pair string, ok bool) {
	s := trimBullet(line)
	if !strings.HasPrefix(s, headerInteraction) {
		return 0, "", false
	}
	rest := strings.TrimLeft(strings.TrimPrefix(s, headerInteraction), " ")

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	ordinal, _ = strconv.Atoi(rest[:digits])
	rest = rest[digits:]

	switch {
	case strings.HasPrefix(rest, "**:"):
		rest = rest[len("**:"):]
	case strings.HasPrefix(rest, ":**"):
		rest = rest[len(":**"):]
	case strings.HasPrefix(rest, "**"):
		rest = strings.TrimLeft(rest[len("**"):], ":")
	}

	return ordinal, strings.TrimSpace(rest), true
}

// fieldValue strips the header prefix and any leading punctuation from a
// classified header line, leaving the field value.
func fieldValue(line, header string) string {
	s := trimBullet(line)
	s = strings.TrimPrefix(s, header)
	return strings.TrimSpace(strings.TrimLeft(s, ":"))
}
