package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
	"github.com/pulsecheck/engage/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteStore implements the storage repository over SQLite.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the engagement database.
func NewSQLiteStore(dbPath string) (repo.StorageRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS journal_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			mood_score INTEGER DEFAULT 0,
			energy_score INTEGER DEFAULT 0,
			stress_score INTEGER DEFAULT 0,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal_entries table: %w", err)
	}

	// The unique index backs the one-reply-per-(entry, persona) invariant at
	// the authoritative persist point.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ai_replies (
			id TEXT PRIMARY KEY,
			journal_entry_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			persona_id TEXT NOT NULL,
			content TEXT NOT NULL,
			is_ai_response INTEGER DEFAULT 1,
			created_at INTEGER NOT NULL,
			UNIQUE(journal_entry_id, persona_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ai_replies table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_ai_preferences (
			user_id TEXT PRIMARY KEY,
			interaction_level TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			preferred_personas TEXT NOT NULL DEFAULT '',
			blocked_personas TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create user_ai_preferences table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_user_created ON journal_entries(user_id, created_at)`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_replies_user_created ON ai_replies(user_id, created_at)`)

	fmt.Println("[Store] Database initialized")
	return &sqliteStore{db: db}, nil
}

// GetActiveUsers lists users with journal activity since the given time.
func (s *sqliteStore) GetActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM journal_entries
		WHERE created_at >= ?
		ORDER BY user_id ASC
	`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

// GetRecentEntries lists a user's entries since the given time, oldest first.
func (s *sqliteStore) GetRecentEntries(ctx context.Context, userID string, since time.Time) ([]*domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content, mood_score, energy_score, stress_score, created_at
		FROM journal_entries
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at ASC
	`, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.MoodScore, &e.EnergyScore, &e.StressScore, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetRepliesForEntries lists existing AI replies for the given entries.
func (s *sqliteStore) GetRepliesForEntries(ctx context.Context, entryIDs []string) ([]*domain.AiReply, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(entryIDs))
	args := make([]interface{}, len(entryIDs))
	for i, id := range entryIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, journal_entry_id, user_id, persona_id, content, created_at
		FROM ai_replies
		WHERE journal_entry_id IN (%s)
		ORDER BY created_at ASC
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	return scanReplies(rows)
}

// GetRecentReplies lists a user's AI replies since the given time.
func (s *sqliteStore) GetRecentReplies(ctx context.Context, userID string, since time.Time) ([]*domain.AiReply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, journal_entry_id, user_id, persona_id, content, created_at
		FROM ai_replies
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at ASC
	`, userID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent replies: %w", err)
	}
	defer rows.Close()

	return scanReplies(rows)
}

func scanReplies(rows *sql.Rows) ([]*domain.AiReply, error) {
	var replies []*domain.AiReply
	for rows.Next() {
		var r domain.AiReply
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.JournalEntryID, &r.UserID, &r.PersonaID, &r.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		r.IsAIResponse = true
		r.CreatedAt = time.Unix(createdAt, 0)
		replies = append(replies, &r)
	}
	return replies, rows.Err()
}

// SaveReply persists a reply. A second reply for the same (entry, persona)
// pair is rejected with repo.ErrDuplicateReply.
func (s *sqliteStore) SaveReply(ctx context.Context, reply *domain.AiReply) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO ai_replies (id, journal_entry_id, user_id, persona_id, content, is_ai_response, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, reply.ID, reply.JournalEntryID, reply.UserID, reply.PersonaID, reply.Content, reply.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}
	if affected == 0 {
		return repo.ErrDuplicateReply
	}
	return nil
}

// GetPreference gets a user's preference, or nil when none was ever written.
func (s *sqliteStore) GetPreference(ctx context.Context, userID string) (*domain.UserAiPreference, error) {
	var p domain.UserAiPreference
	var level, tier, preferred, blocked string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, interaction_level, tier, preferred_personas, blocked_personas, updated_at
		FROM user_ai_preferences
		WHERE user_id = ?
	`, userID).Scan(&p.UserID, &level, &tier, &preferred, &blocked, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}

	p.InteractionLevel = domain.InteractionLevel(level)
	p.Tier = domain.Tier(tier)
	p.PreferredPersonas = splitIDs(preferred)
	p.BlockedPersonas = splitIDs(blocked)
	p.UpdatedAt = time.Unix(updatedAt, 0)
	return &p, nil
}

// InsertEntry writes a journal entry. Entry writes belong to the journal
// service; this exists for seeding and tests.
func (s *sqliteStore) InsertEntry(ctx context.Context, entry *domain.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, user_id, content, mood_score, energy_score, stress_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Content, entry.MoodScore, entry.EnergyScore, entry.StressScore, entry.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// SavePreference writes a user preference. Preference writes belong to the
// settings service; this exists for seeding and tests.
func (s *sqliteStore) SavePreference(ctx context.Context, pref *domain.UserAiPreference) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_ai_preferences (user_id, interaction_level, tier, preferred_personas, blocked_personas, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pref.UserID, string(pref.InteractionLevel), string(pref.Tier),
		strings.Join(pref.PreferredPersonas, ","), strings.Join(pref.BlockedPersonas, ","), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func splitIDs(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
