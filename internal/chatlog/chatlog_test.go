package chatlog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/hr-analyst-bot/internal/domain"
	"github.com/ashureev/hr-analyst-bot/internal/store"
)

type execCall struct {
	Query string
	Args  []any
}

type fakeRepo struct {
	rs    *store.ResultSet
	execs []execCall
}

func (f *fakeRepo) RunQuery(_ context.Context, _ string, _ int, _ ...any) (*store.ResultSet, error) {
	if f.rs == nil {
		return &store.ResultSet{Rows: []map[string]any{}}, nil
	}
	return f.rs, nil
}

func (f *fakeRepo) Exec(_ context.Context, query string, args ...any) (int64, error) {
	f.execs = append(f.execs, execCall{Query: query, Args: args})
	return 1, nil
}

func (f *fakeRepo) Ping(context.Context) error { return nil }
func (f *fakeRepo) Close() error               { return nil }

func TestStartThread(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	log := New(repo)

	threadID, err := log.StartThread(context.Background(), "42")
	if err != nil {
		t.Fatalf("StartThread failed: %v", err)
	}
	if threadID == "" {
		t.Fatalf("thread id is empty")
	}
	if len(repo.execs) != 1 {
		t.Fatalf("execs = %d, want 1", len(repo.execs))
	}
	if !strings.Contains(repo.execs[0].Query, "INSERT INTO chat_threads") {
		t.Errorf("query = %q", repo.execs[0].Query)
	}
	if repo.execs[0].Args[0] != threadID || repo.execs[0].Args[1] != "42" {
		t.Errorf("args = %v", repo.execs[0].Args)
	}
}

func TestSaveMessage(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	log := New(repo)

	err := log.SaveMessage(context.Background(), "t1", "42", domain.RoleUser, "привет", domain.AgentUser)
	if err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}
	if len(repo.execs) != 1 {
		t.Fatalf("execs = %d, want 1", len(repo.execs))
	}
	call := repo.execs[0]
	if !strings.Contains(call.Query, "INSERT INTO chat_log") {
		t.Errorf("query = %q", call.Query)
	}
	want := []any{"t1", "42", "user", "привет", "user"}
	for i, arg := range want {
		if call.Args[i] != arg {
			t.Errorf("arg[%d] = %v, want %v", i, call.Args[i], arg)
		}
	}
}

func TestHistoryReversesToChronological(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	// The select is newest-first; History must hand back oldest-first.
	repo := &fakeRepo{rs: &store.ResultSet{
		Columns: []string{"role", "message", "agent_name", "ts"},
		Rows: []map[string]any{
			{"role": "assistant", "message": "ответ", "agent_name": "main", "ts": t2},
			{"role": "user", "message": "вопрос", "agent_name": "user", "ts": t1},
		},
	}}
	log := New(repo)

	entries, err := log.History(context.Background(), "t1", 5)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Role != domain.RoleUser || entries[1].Role != domain.RoleAssistant {
		t.Errorf("history not chronological: %v then %v", entries[0].Role, entries[1].Role)
	}
	if !entries[0].Timestamp.Equal(t1) {
		t.Errorf("timestamp = %v, want %v", entries[0].Timestamp, t1)
	}
}

func TestFormatHistory(t *testing.T) {
	t.Parallel()

	entries := []domain.ChatLogEntry{
		{Role: "user", AgentName: "user", Message: "покажи увольнения"},
		{Role: "assistant", AgentName: "analyst", Message: "❓ За какой период?"},
	}

	got := FormatHistory(entries)
	want := "user(user): покажи увольнения\nassistant(analyst): ❓ За какой период?"
	if got != want {
		t.Errorf("FormatHistory = %q, want %q", got, want)
	}
}

func TestFormatHistoryEmpty(t *testing.T) {
	t.Parallel()

	if got := FormatHistory(nil); got != "" {
		t.Errorf("FormatHistory(nil) = %q, want empty", got)
	}
}
