package usecase

import (
	"errors"
	"testing"
)

func TestPersonaRegistry_DefaultCatalog(t *testing.T) {
	registry := NewPersonaRegistry()

	personas := registry.List()
	if len(personas) != 4 {
		t.Fatalf("Expected 4 personas, got %d", len(personas))
	}

	expected := []string{"pulse", "sage", "spark", "anchor"}
	for i, id := range expected {
		if personas[i].ID != id {
			t.Errorf("Position %d: got %s, want %s", i, personas[i].ID, id)
		}
		if personas[i].DisplayName == "" || personas[i].ToneProfile == "" {
			t.Errorf("Persona %s missing display name or tone profile", id)
		}
	}
}

func TestPersonaRegistry_Get(t *testing.T) {
	registry := NewPersonaRegistry()

	p, err := registry.Get("sage")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.DisplayName != "Sage" {
		t.Errorf("Expected display name 'Sage', got %q", p.DisplayName)
	}
}

func TestPersonaRegistry_GetUnknown(t *testing.T) {
	registry := NewPersonaRegistry()

	_, err := registry.Get("oracle")
	if err == nil {
		t.Fatal("Expected error for unknown persona")
	}
	if !errors.Is(err, ErrPersonaNotFound) {
		t.Errorf("Expected ErrPersonaNotFound, got %v", err)
	}
}

func TestPersonaRegistry_ListReturnsCopy(t *testing.T) {
	registry := NewPersonaRegistry()

	list := registry.List()
	list[0].DisplayName = "mutated"

	if registry.List()[0].DisplayName == "mutated" {
		t.Error("List must return a copy, not the backing slice")
	}
}
