package domain

import (
	"regexp"
	"strings"
	"time"
)

// JournalEntry represents a user's journal entry.
// Entries are owned by the journal storage; the engine only reads them.
type JournalEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	MoodScore   int       `json:"mood_score"`   // 1-10
	EnergyScore int       `json:"energy_score"` // 1-10
	StressScore int       `json:"stress_score"` // 1-10
	CreatedAt   time.Time `json:"created_at"`
}

// aiPhrasingPatterns match the openers and signatures of generated replies.
// An entry matching any of these is treated as an AI reply that leaked back
// into the journal stream and must never receive another AI reply on top.
var aiPhrasingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(thank you for (sharing|opening up)|i hear you|it sounds like you|i'm (really )?glad you (shared|wrote|opened up))`),
	regexp.MustCompile(`(?i)(as your (ai )?(companion|wellness companion)|i'm always here (for you|to listen|if you need))`),
	regexp.MustCompile(`(?i)^(pulse|sage|spark|anchor):\s`),
	regexp.MustCompile(`(?i)remember,? i'?m an ai`),
}

// IsSubstantial reports whether the entry content is long enough to
// respond to meaningfully.
func (e *JournalEntry) IsSubstantial(minLength int) bool {
	return len(strings.TrimSpace(e.Content)) >= minLength
}

// LooksLikeAiReply reports whether content resembles generated reply
// phrasing. Guards against AI-to-AI feedback loops.
func LooksLikeAiReply(content string) bool {
	trimmed := strings.TrimSpace(content)
	for _, p := range aiPhrasingPatterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}
