// Package analyst translates natural-language questions into validated
// read-only SQL over hr_data and renders the result.
package analyst

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/hr-analyst-bot/internal/chatlog"
	"github.com/ashureev/hr-analyst-bot/internal/domain"
	"github.com/ashureev/hr-analyst-bot/internal/llm"
	"github.com/ashureev/hr-analyst-bot/internal/store"
	"github.com/ashureev/hr-analyst-bot/internal/telegram"
)

const historyLimit = 5

// HistoryProvider supplies recent chat-log entries for prompt context.
type HistoryProvider interface {
	History(ctx context.Context, threadID string, limit int) ([]domain.ChatLogEntry, error)
}

// Messenger delivers the tabular result as a chat attachment.
type Messenger interface {
	SendTable(ctx context.Context, chatID string, rs *store.ResultSet, filename string) telegram.Result
}

// Visualizer produces an optional chart for a result set. A nil return means
// no chart; failures never surface here.
type Visualizer interface {
	Visualize(ctx context.Context, rs *store.ResultSet, userQuery string) []byte
}

// Service runs the analyst pipeline: prompt, extract, validate, execute, send.
type Service struct {
	llm      llm.Completer
	repo     store.Repository
	history  HistoryProvider
	tg       Messenger
	viz      Visualizer
	rowLimit int
	logger   *slog.Logger
}

// New creates an analyst service. viz may be nil to disable charts.
func New(completer llm.Completer, repo store.Repository, history HistoryProvider, tg Messenger, viz Visualizer, rowLimit int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		llm:      completer,
		repo:     repo,
		history:  history,
		tg:       tg,
		viz:      viz,
		rowLimit: rowLimit,
		logger:   logger,
	}
}

// Run handles one analyst request for a thread. It never returns an error:
// every failure is folded into a ResultError carrying a user-facing message.
func (s *Service) Run(ctx context.Context, threadID, userMessage, chatID string) domain.AnalystResult {
	entries, err := s.history.History(ctx, threadID, historyLimit)
	if err != nil {
		return errorResult(err)
	}
	histText := chatlog.FormatHistory(entries)

	prompt := fmt.Sprintf("%s\n\nИстория:\n%s\n\nВопрос: %s", systemPrompt(), histText, userMessage)
	answer, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Text: prompt}},
		Temperature: 0,
		MaxTokens:   500,
	})
	if err != nil {
		return errorResult(err)
	}
	s.logger.Info("analyst reply", "text", answer)

	sql := ExtractSQL(answer)
	if sql == "" {
		return domain.AnalystResult{Type: domain.ResultClarification, Text: "❓ " + answer}
	}

	if !ValidateSQL(sql) {
		return domain.AnalystResult{
			Type: domain.ResultError,
			Text: fmt.Sprintf("⚠️ Запрос отклонён как небезопасный:\n%s", sql),
		}
	}

	rs, err := s.repo.RunQuery(ctx, sql, s.rowLimit)
	if err != nil {
		return domain.AnalystResult{
			Type: domain.ResultError,
			Text: fmt.Sprintf("⚠️ Ошибка при выполнении SQL:\n%s\n\nОшибка: %v", sql, err),
		}
	}

	if rs.Empty() {
		return domain.AnalystResult{Type: domain.ResultData, Text: "⚠️ Данных нет."}
	}

	filename := MakeFilename(userMessage)
	if res := s.tg.SendTable(ctx, chatID, rs, filename); !res.OK {
		s.logger.Warn("failed to send result table", "chat_id", chatID, "description", res.Description)
	}

	// Visualization is best-effort: the visualizer swallows its own failures.
	var img []byte
	if s.viz != nil {
		img = s.viz.Visualize(ctx, rs, userMessage)
		s.logger.Info("visualization", "rendered", img != nil)
	}

	return domain.AnalystResult{
		Type:  domain.ResultData,
		Text:  fmt.Sprintf("📊 Результат анализа во вложенном файле: %s", filename),
		Image: img,
	}
}

func errorResult(err error) domain.AnalystResult {
	return domain.AnalystResult{
		Type: domain.ResultError,
		Text: fmt.Sprintf("❌ Ошибка аналитика: %v", err),
	}
}
