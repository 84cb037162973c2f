package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
	"github.com/pulsecheck/engage/internal/biz/repo"

	openai "github.com/sashabaranov/go-openai"
)

// openaiGenerator implements the AI-text-generation collaborator using the
// OpenAI chat completion API. Every call carries a bounded timeout; a
// timed-out call surfaces as a GenerationError, never as a hang.
type openaiGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates a generator.
func NewOpenAIGenerator(apiKey, model string, timeout time.Duration) repo.GeneratorRepo {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &openaiGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// Generate produces a reply draft in the persona's voice.
func (g *openaiGenerator) Generate(ctx context.Context, persona domain.Persona, entry *domain.JournalEntry) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: personaSystemPrompt(persona)},
			{Role: openai.ChatMessageRoleUser, Content: buildEntryPrompt(entry)},
		},
		Temperature: 0.7,
		MaxTokens:   220,
	})
	if err != nil {
		return "", &repo.GenerationError{PersonaID: persona.ID, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &repo.GenerationError{PersonaID: persona.ID, Err: fmt.Errorf("no response choices")}
	}

	draft := strings.TrimSpace(resp.Choices[0].Message.Content)
	if draft == "" {
		return "", &repo.GenerationError{PersonaID: persona.ID, Err: fmt.Errorf("empty response")}
	}
	return draft, nil
}

// personaSystemPrompt builds the voice prompt for a persona.
func personaSystemPrompt(persona domain.Persona) string {
	return fmt.Sprintf(`You are %s, an AI companion in a journaling app. Your voice: %s.

You are replying to one journal entry as a short social-feed comment.

Rules:
1. Respond directly to what the user wrote, in 2-4 sentences
2. Never give medical advice, never mention medication or diagnoses
3. Never claim the user is sick, broken, or needs to be fixed
4. Do not dismiss or minimize what the user is feeling
5. Write as %s; do not sign the comment or mention being an AI`,
		persona.DisplayName, persona.ToneProfile, persona.DisplayName)
}

// buildEntryPrompt formats the journal entry, including the mood scalars
// when the app recorded them.
func buildEntryPrompt(entry *domain.JournalEntry) string {
	var sb strings.Builder
	sb.WriteString("Journal entry:\n")
	sb.WriteString(entry.Content)
	if entry.MoodScore > 0 || entry.EnergyScore > 0 || entry.StressScore > 0 {
		sb.WriteString(fmt.Sprintf("\n\n(Self-reported: mood %d/10, energy %d/10, stress %d/10)",
			entry.MoodScore, entry.EnergyScore, entry.StressScore))
	}
	return sb.String()
}
