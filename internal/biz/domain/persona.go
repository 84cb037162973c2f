package domain

// Persona represents a named AI response style, selectable independently of
// the underlying text-generation model. Registry entries are immutable.
type Persona struct {
	ID          string
	DisplayName string
	ToneProfile string
}
