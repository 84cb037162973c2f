package repo

import (
	"context"
	"fmt"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

// GenerationError wraps a failed or timed-out generation call. The scheduler
// records it and leaves the retry to the next natural cycle.
type GenerationError struct {
	PersonaID string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for persona %s: %v", e.PersonaID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GeneratorRepo is the AI-text-generation interface. Implementations may be
// slow and may fail; every call must carry a bounded timeout.
type GeneratorRepo interface {
	// Generate produces a reply draft in the persona's voice for the given
	// journal entry. Failures are returned as *GenerationError.
	Generate(ctx context.Context, persona domain.Persona, entry *domain.JournalEntry) (string, error)
}
