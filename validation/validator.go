// Package validation provides input validation for the interactions API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medsafe/interactions-api/interactionsparser"
	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Medication names: alphanumeric + common accents + safe punctuation
	medicationRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'/(),àâäéèêëïîôöùûüÿç]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

const (
	maxMedicationLength      = 100
	maxMedicationWords       = 8
	maxMedicationsPerRequest = 20
	maxAgeYears              = 130
	maxHeightCm              = 300.0
	maxWeightKg              = 700.0
)

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidatorImpl {
	return &InputValidatorImpl{}
}

// ValidateMedication validates a single user-supplied medication name
func (v *InputValidatorImpl) ValidateMedication(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("medication name cannot be empty: %w", interactionsparser.ErrEmptyInput)
	}

	if len(name) > maxMedicationLength {
		return fmt.Errorf("medication name too long: maximum %d characters", maxMedicationLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(name)
	if len(words) > maxMedicationWords {
		return fmt.Errorf("medication name too complex: maximum %d words allowed", maxMedicationWords)
	}

	// Check for potentially dangerous patterns using string matching (faster than regex)
	lowerName := strings.ToLower(name)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerName, pattern) {
			return fmt.Errorf("medication name contains potentially dangerous content")
		}
	}

	if !medicationRegex.MatchString(name) {
		return fmt.Errorf("medication name contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, parentheses, plus sign, and common accented characters are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if hasExcessiveRepetition(name) {
		return fmt.Errorf("medication name contains excessive character repetition")
	}

	return nil
}

// ValidateMedications validates the whole medication list of a request.
// Names that are blank after trimming do not count toward having any input.
func (v *InputValidatorImpl) ValidateMedications(names []string) error {
	if len(names) > maxMedicationsPerRequest {
		return fmt.Errorf("too many medications: maximum %d per request", maxMedicationsPerRequest)
	}

	nonEmpty := 0
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		nonEmpty++
		if err := v.ValidateMedication(name); err != nil {
			return fmt.Errorf("medication %d: %w", i+1, err)
		}
	}

	if nonEmpty == 0 {
		return interactionsparser.ErrEmptyInput
	}

	return nil
}

// ValidateProfile checks that biometric values fall in a plausible human
// range before the dose calculation uses them.
func (v *InputValidatorImpl) ValidateProfile(profile entities.BiometricProfile) error {
	if profile.HeightCm <= 0 {
		return fmt.Errorf("height must be positive, got %.1f cm: %w", profile.HeightCm, entities.ErrInvalidMeasurement)
	}
	if profile.HeightCm > maxHeightCm {
		return fmt.Errorf("height out of range, got %.1f cm: %w", profile.HeightCm, entities.ErrInvalidMeasurement)
	}

	if profile.WeightKg <= 0 {
		return fmt.Errorf("weight must be positive, got %.1f kg: %w", profile.WeightKg, entities.ErrInvalidMeasurement)
	}
	if profile.WeightKg > maxWeightKg {
		return fmt.Errorf("weight out of range, got %.1f kg: %w", profile.WeightKg, entities.ErrInvalidMeasurement)
	}

	if profile.AgeYears <= 0 || profile.AgeYears > maxAgeYears {
		return fmt.Errorf("age out of range, got %d years: %w", profile.AgeYears, entities.ErrInvalidMeasurement)
	}

	return nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
