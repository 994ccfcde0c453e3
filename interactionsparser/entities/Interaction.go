package entities

import "strings"

// Canonical severity vocabulary. Generator output is matched
// case-insensitively against these tokens during normalization.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityUnknown  = "unknown"
)

// NormalizeSeverity maps a free-form severity token to the canonical
// lowercase vocabulary. Anything outside the vocabulary becomes "unknown".
func NormalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SeverityMild:
		return SeverityMild
	case SeverityModerate:
		return SeverityModerate
	case SeveritySevere:
		return SeveritySevere
	default:
		return SeverityUnknown
	}
}

// IsKnownSeverity reports whether s, compared case-insensitively,
// is one of the canonical severity tokens.
func IsKnownSeverity(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SeverityMild, SeverityModerate, SeveritySevere, SeverityUnknown:
		return true
	}
	return false
}

// InteractionRecord is one parsed interaction block from the generator
// response. Fields the generator omitted stay as empty strings; an empty
// field means "no content", not a parse failure.
type InteractionRecord struct {
	Ordinal   int    `json:"ordinal"`
	DrugPair  string `json:"drugPair"`
	Severity  string `json:"severity"`
	Mechanism string `json:"mechanism"`
	Risks     string `json:"risks"`
	Advice    string `json:"advice"`
}

// NoInteractionRecord is the sentinel for a response asserting that no
// known interaction exists. It carries only the display message.
type NoInteractionRecord struct {
	Message string `json:"message"`
}

// InteractionReport is the outcome of parsing one interaction response.
// Either Interactions is non-empty or NoInteraction is set, never both.
// Malformed flags a response in which nothing recognizable was found,
// so the caller can fall back to displaying the raw text.
type InteractionReport struct {
	Interactions  []InteractionRecord  `json:"interactions,omitempty"`
	NoInteraction *NoInteractionRecord `json:"noInteraction,omitempty"`
	Malformed     bool                 `json:"malformed,omitempty"`
}
