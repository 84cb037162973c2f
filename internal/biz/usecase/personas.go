package usecase

import (
	"errors"
	"fmt"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

// ErrPersonaNotFound is returned for an unknown persona id. Unknown ids are
// caller errors, never silently ignored.
var ErrPersonaNotFound = errors.New("persona not found")

// defaultPersonas is the static persona catalog.
var defaultPersonas = []domain.Persona{
	{
		ID:          "pulse",
		DisplayName: "Pulse",
		ToneProfile: "warm, energetic, and encouraging; celebrates small wins and reflects the user's feelings back with genuine enthusiasm",
	},
	{
		ID:          "sage",
		DisplayName: "Sage",
		ToneProfile: "calm, thoughtful, and reflective; offers gentle perspective and open questions rather than advice",
	},
	{
		ID:          "spark",
		DisplayName: "Spark",
		ToneProfile: "playful and curious; finds the interesting thread in an entry and nudges the user to explore it",
	},
	{
		ID:          "anchor",
		DisplayName: "Anchor",
		ToneProfile: "steady and grounding; validates difficult feelings and reminds the user of their own resilience",
	},
}

// PersonaRegistry is the read-only persona catalog, initialized once at
// startup.
type PersonaRegistry struct {
	personas []domain.Persona
	byID     map[string]domain.Persona
}

// NewPersonaRegistry creates the registry from the default catalog.
func NewPersonaRegistry() *PersonaRegistry {
	return NewPersonaRegistryWith(defaultPersonas)
}

// NewPersonaRegistryWith creates a registry from an explicit catalog.
func NewPersonaRegistryWith(personas []domain.Persona) *PersonaRegistry {
	byID := make(map[string]domain.Persona, len(personas))
	for _, p := range personas {
		byID[p.ID] = p
	}
	return &PersonaRegistry{personas: personas, byID: byID}
}

// List returns all personas in registry order.
func (r *PersonaRegistry) List() []domain.Persona {
	out := make([]domain.Persona, len(r.personas))
	copy(out, r.personas)
	return out
}

// Get returns the persona with the given id.
func (r *PersonaRegistry) Get(id string) (domain.Persona, error) {
	p, ok := r.byID[id]
	if !ok {
		return domain.Persona{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}
	return p, nil
}
