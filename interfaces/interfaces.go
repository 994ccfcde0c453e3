// Package interfaces defines core abstractions for the interactions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/medsafe/interactions-api/interactionsparser/entities"
)

// Generator is the external text-completion service that turns an
// instruction prompt into a free-text explanation. The call can take
// seconds; implementations must honor the context.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Vocabulary is the external drug-vocabulary lookup service. A failed
// lookup is never fatal for the interaction flow, but it must stay
// distinguishable from success.
type Vocabulary interface {
	// FindRxCUI resolves a free-text drug name to its RxNorm concept code.
	FindRxCUI(ctx context.Context, name string) (string, error)
}

// CodeStore holds resolved drug codes between requests so repeated
// lookups of the same medication skip the vocabulary service.
// Implementations must be safe for concurrent use.
type CodeStore interface {
	// Read methods
	LookupCode(name string) (string, bool)
	Names() []string
	Size() int
	GetLastSwept() time.Time
	IsSweeping() bool

	// Write methods
	StoreCode(name, code string)
	ReplaceCodes(codes map[string]string)
	BeginSweep() bool
	EndSweep()
}

// InputValidator validates user-supplied medication names and biometric
// profiles before any upstream call is made.
type InputValidator interface {
	ValidateMedication(name string) error
	ValidateMedications(names []string) error
	ValidateProfile(profile entities.BiometricProfile) error
}

// Sweeper defines the contract for the scheduled cache maintenance job.
type Sweeper interface {
	// Lifecycle management
	Start() error
	Stop()
}
