// Package chatlog persists per-thread conversation history on top of the
// persistence gateway.
package chatlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/hr-analyst-bot/internal/domain"
	"github.com/ashureev/hr-analyst-bot/internal/store"
	"github.com/google/uuid"
)

// Log appends and reads role-tagged messages for conversation threads.
type Log struct {
	repo store.Repository
}

// New creates a conversation log backed by the given repository.
func New(repo store.Repository) *Log {
	return &Log{repo: repo}
}

// EnsureSchema creates the chat_threads and chat_log tables if absent.
func (l *Log) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_threads (
			thread_id  TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS chat_log (
			id         SERIAL PRIMARY KEY,
			thread_id  TEXT NOT NULL,
			user_id    TEXT NOT NULL,
			role       TEXT NOT NULL,
			message    TEXT NOT NULL,
			agent_name TEXT NOT NULL DEFAULT 'main',
			ts         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_log_thread_ts ON chat_log(thread_id, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := l.repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure chat schema: %w", err)
		}
	}
	return nil
}

// StartThread creates a new conversation thread for a chat and returns its id.
func (l *Log) StartThread(ctx context.Context, chatID string) (string, error) {
	threadID := uuid.NewString()
	query := `INSERT INTO chat_threads (thread_id, user_id, started_at) VALUES ($1, $2, NOW())`
	if _, err := l.repo.Exec(ctx, query, threadID, chatID); err != nil {
		return "", fmt.Errorf("start thread: %w", err)
	}
	return threadID, nil
}

// SaveMessage appends a message to the chat log.
func (l *Log) SaveMessage(ctx context.Context, threadID, userID, role, message, agentName string) error {
	query := `
		INSERT INTO chat_log (thread_id, user_id, role, message, agent_name, ts)
		VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := l.repo.Exec(ctx, query, threadID, userID, role, message, agentName); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// History returns the most recent limit messages of a thread in chronological
// order. The select is newest-first and re-reversed in memory, so the cutoff
// drops the oldest messages, not the newest.
func (l *Log) History(ctx context.Context, threadID string, limit int) ([]domain.ChatLogEntry, error) {
	query := `
		SELECT role, message, agent_name, ts
		FROM chat_log
		WHERE thread_id = $1
		ORDER BY ts DESC
		LIMIT $2`

	rs, err := l.repo.RunQuery(ctx, query, limit, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	entries := make([]domain.ChatLogEntry, 0, len(rs.Rows))
	for i := len(rs.Rows) - 1; i >= 0; i-- {
		row := rs.Rows[i]
		entry := domain.ChatLogEntry{
			ThreadID:  threadID,
			Role:      stringValue(row["role"]),
			Message:   stringValue(row["message"]),
			AgentName: stringValue(row["agent_name"]),
		}
		if ts, ok := row["ts"].(time.Time); ok {
			entry.Timestamp = ts
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FormatHistory renders history entries as "role(agent): message" lines for
// prompt assembly.
func FormatHistory(entries []domain.ChatLogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s(%s): %s", e.Role, e.AgentName, e.Message))
	}
	return strings.Join(lines, "\n")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
