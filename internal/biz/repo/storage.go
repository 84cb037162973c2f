package repo

import (
	"context"
	"errors"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

// ErrDuplicateReply is returned by SaveReply when a reply already exists for
// the same (journal entry, persona) pair. The caller discards the reply, it
// is never retried.
var ErrDuplicateReply = errors.New("reply already exists for this entry and persona")

// StorageRepo is the journal/replies/preferences persistence interface.
// Entries and preferences are read-only to the engine; replies are written
// exclusively through SaveReply.
type StorageRepo interface {
	// GetActiveUsers lists users with journal activity since the given time,
	// ordered by user id.
	GetActiveUsers(ctx context.Context, since time.Time) ([]string, error)

	// GetRecentEntries lists a user's entries created since the given time,
	// oldest first.
	GetRecentEntries(ctx context.Context, userID string, since time.Time) ([]*domain.JournalEntry, error)

	// GetRepliesForEntries lists existing AI replies for the given entries.
	GetRepliesForEntries(ctx context.Context, entryIDs []string) ([]*domain.AiReply, error)

	// GetRecentReplies lists a user's AI replies created since the given
	// time, across all entries. Used for cooldown and daily-cap checks.
	GetRecentReplies(ctx context.Context, userID string, since time.Time) ([]*domain.AiReply, error)

	// SaveReply persists a reply. Returns ErrDuplicateReply if a reply for
	// the same (entry, persona) pair already exists.
	SaveReply(ctx context.Context, reply *domain.AiReply) error

	// GetPreference gets a user's AI preference, or nil when the user has
	// never written one.
	GetPreference(ctx context.Context, userID string) (*domain.UserAiPreference, error)

	Close() error
}
