// Package webhook implements the Telegram webhook boundary.
//
// The handler always answers HTTP 200: the upstream platform retries on any
// error status, so the real disposition is encoded in the plain-text body
// ("forbidden", "bad json", "dup", "no chat_id", "ok", "error").
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/ashureev/hr-analyst-bot/internal/domain"
	"github.com/ashureev/hr-analyst-bot/internal/llm"
	"github.com/ashureev/hr-analyst-bot/internal/telegram"
)

// secretHeader carries the shared webhook secret set via setWebhook.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxBodySize caps the webhook request body (1MB).
const maxBodySize = 1 << 20

const (
	greeting     = "Привет! Я твой HR-ассистент 👋 Я могу работать с БД, строить графики и помогать в аналитике."
	noticeText   = "Генерирую аналитику... 📊"
	errorText    = "⚠️ Произошла внутренняя ошибка, попробуйте ещё раз."
	photoCaption = "Визуализация 📈"
)

// ConversationLog is the chat-log surface the handler needs.
type ConversationLog interface {
	StartThread(ctx context.Context, chatID string) (string, error)
	SaveMessage(ctx context.Context, threadID, userID, role, message, agentName string) error
	History(ctx context.Context, threadID string, limit int) ([]domain.ChatLogEntry, error)
}

// Messenger is the outbound messaging surface the handler needs.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) telegram.Result
	SendPhoto(ctx context.Context, chatID string, photo []byte, caption string) telegram.Result
}

// Analyst runs the text-to-SQL pipeline for one request.
type Analyst interface {
	Run(ctx context.Context, threadID, userMessage, chatID string) domain.AnalystResult
}

// Handler routes webhook deliveries to the analyst or a conversational reply.
//
// The dedup set and the chat→thread map are process-wide and mutex-guarded:
// net/http serves handlers concurrently, unlike the single-delivery model the
// pipeline otherwise assumes. The dedup set grows without eviction, which is
// acceptable at expected volume.
type Handler struct {
	secret  string
	log     ConversationLog
	llm     llm.Completer
	tg      Messenger
	analyst Analyst
	logger  *slog.Logger

	mu      sync.Mutex
	seen    map[int64]struct{}
	threads map[string]string
}

// New creates a webhook handler.
func New(secret string, log ConversationLog, completer llm.Completer, tg Messenger, analyst Analyst, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		secret:  secret,
		log:     log,
		llm:     completer,
		tg:      tg,
		analyst: analyst,
		logger:  logger,
		seen:    make(map[int64]struct{}),
		threads: make(map[string]string),
	}
}

type update struct {
	UpdateID      *int64   `json:"update_id"`
	Message       *message `json:"message"`
	EditedMessage *message `json:"edited_message"`
}

type message struct {
	Chat *struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text string `json:"text"`
}

// ServeHTTP handles one webhook delivery.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Healthcheck.
	if r.Method == http.MethodGet {
		respond(w, "ok")
		return
	}

	if r.Header.Get(secretHeader) != h.secret {
		h.logger.Warn("forbidden: bad secret")
		respond(w, "forbidden")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("failed to read body", "error", err)
		respond(w, "bad json")
		return
	}

	var upd update
	if err := json.Unmarshal(body, &upd); err != nil {
		h.logger.Warn("bad json", "error", err, "body", truncate(string(body), 3000))
		respond(w, "bad json")
		return
	}
	h.logger.Info("incoming update", "update", truncate(string(body), 3000))

	// Record the update id before processing; a crash after this point drops
	// the update instead of reprocessing it, an accepted tradeoff.
	if upd.UpdateID != nil && !h.markSeen(*upd.UpdateID) {
		respond(w, "dup")
		return
	}

	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}

	var chatID string
	if msg != nil && msg.Chat != nil {
		chatID = strconv.FormatInt(msg.Chat.ID, 10)
	}
	var text string
	if msg != nil {
		text = strings.TrimSpace(msg.Text)
	}
	if chatID == "" || text == "" {
		h.logger.Warn("no chat_id or empty text")
		respond(w, "no chat_id")
		return
	}

	ctx := r.Context()

	threadID, err := h.ensureThread(ctx, chatID)
	if err != nil {
		h.logger.Error("failed to start thread", "chat_id", chatID, "error", err)
		h.tg.SendMessage(ctx, chatID, errorText, "")
		respond(w, "error")
		return
	}

	// Persist the incoming message unconditionally before branching.
	if err := h.log.SaveMessage(ctx, threadID, chatID, domain.RoleUser, text, domain.AgentUser); err != nil {
		h.logger.Warn("failed to persist user message", "thread_id", threadID, "error", err)
	}

	if err := h.dispatch(ctx, threadID, chatID, text); err != nil {
		h.logger.Error("unhandled error", "chat_id", chatID, "error", err)
		h.tg.SendMessage(ctx, chatID, errorText, "")
		respond(w, "error")
		return
	}

	respond(w, "ok")
}

// markSeen records an update id and reports whether it was new.
func (h *Handler) markSeen(updateID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.seen[updateID]; dup {
		return false
	}
	h.seen[updateID] = struct{}{}
	return true
}

// ensureThread returns the thread for a chat, lazily creating one. The
// mapping lives for the process lifetime; a restart starts fresh threads.
func (h *Handler) ensureThread(ctx context.Context, chatID string) (string, error) {
	h.mu.Lock()
	threadID, ok := h.threads[chatID]
	h.mu.Unlock()
	if ok {
		return threadID, nil
	}

	created, err := h.log.StartThread(ctx, chatID)
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Another delivery may have created a thread in the meantime; keep the
	// first one so the chat stays on a single history.
	if existing, ok := h.threads[chatID]; ok {
		return existing, nil
	}
	h.threads[chatID] = created
	return created, nil
}

func (h *Handler) dispatch(ctx context.Context, threadID, chatID, text string) error {
	switch {
	case text == "/start":
		if err := h.log.SaveMessage(ctx, threadID, chatID, domain.RoleAssistant, greeting, domain.AgentMain); err != nil {
			return err
		}
		h.tg.SendMessage(ctx, chatID, greeting, "")
		return nil

	case strings.HasPrefix(text, "/db"):
		return h.runAnalyst(ctx, threadID, chatID, text)

	default:
		action, err := h.decideAction(ctx, text)
		if err != nil {
			return err
		}
		if action == "SQL" {
			h.tg.SendMessage(ctx, chatID, noticeText, "")
			return h.runAnalyst(ctx, threadID, chatID, text)
		}
		return h.chatReply(ctx, threadID, chatID, text)
	}
}

func (h *Handler) runAnalyst(ctx context.Context, threadID, chatID, text string) error {
	result := h.analyst.Run(ctx, threadID, text, chatID)

	switch result.Type {
	case domain.ResultClarification:
		if err := h.log.SaveMessage(ctx, threadID, chatID, domain.RoleAssistant, result.Text, domain.AgentAnalyst); err != nil {
			return err
		}
		h.tg.SendMessage(ctx, chatID, result.Text, "")
	case domain.ResultData:
		if err := h.log.SaveMessage(ctx, threadID, chatID, domain.RoleAssistant, result.Text, domain.AgentAnalyst); err != nil {
			return err
		}
		h.tg.SendMessage(ctx, chatID, result.Text, "")
		if len(result.Image) > 0 {
			h.tg.SendPhoto(ctx, chatID, result.Image, photoCaption)
		}
	default:
		// Error results are surfaced but not logged to the thread history.
		h.tg.SendMessage(ctx, chatID, result.Text, "")
	}
	return nil
}

func respond(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
