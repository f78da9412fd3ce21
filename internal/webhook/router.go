package webhook

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ashureev/hr-analyst-bot/internal/chatlog"
	"github.com/ashureev/hr-analyst-bot/internal/domain"
	"github.com/ashureev/hr-analyst-bot/internal/llm"
)

const (
	chatHistoryLimit = 6
	historyCharLimit = 2000
)

// decideAction asks the model whether a free-form message needs the SQL
// analyst or a plain conversational reply. Returns "SQL" or "CHAT".
func (h *Handler) decideAction(ctx context.Context, userMessage string) (string, error) {
	prompt := fmt.Sprintf(`Ты — HR-ассистент. Твоя задача: определить, нужен ли SQL-запрос к базе данных hr_data,
или достаточно обычного ответа.

hr_data содержит:
- report_date (DATE)
- service (TEXT)
- hirecount (INT)
- firecount (INT)

Если вопрос пользователя про статистику, графики, наймы, увольнения → ответ "SQL".
Если это общий вопрос или разговор → ответ "CHAT".

ВАЖНО: Ответь только одним словом: SQL или CHAT.

Вопрос: %s`, userMessage)

	reply, err := h.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Text: prompt}},
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		return "", fmt.Errorf("routing classification: %w", err)
	}

	if strings.Contains(strings.ToUpper(reply), "SQL") {
		return "SQL", nil
	}
	return "CHAT", nil
}

// chatReply produces a conversational answer over the thread's recent history.
func (h *Handler) chatReply(ctx context.Context, threadID, chatID, userMessage string) error {
	entries, err := h.log.History(ctx, threadID, chatHistoryLimit)
	if err != nil {
		return fmt.Errorf("load chat history: %w", err)
	}
	histText := truncateRunes(chatlog.FormatHistory(entries), historyCharLimit)

	prompt := fmt.Sprintf(`Ты HR-ассистент. Отвечай дружелюбно, но по делу.
Помогай в вопросах HR-аналитики и данных.
История диалога:
%s

Новый вопрос: %s`, histText, userMessage)

	reply, err := h.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Text: prompt}},
		Temperature: 0.5,
		MaxTokens:   300,
	})
	if err != nil {
		return fmt.Errorf("conversational reply: %w", err)
	}

	if err := h.log.SaveMessage(ctx, threadID, chatID, domain.RoleAssistant, reply, domain.AgentMain); err != nil {
		return err
	}
	h.tg.SendMessage(ctx, chatID, reply, "")
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
