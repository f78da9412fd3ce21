// Package telegram sends bot messages through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Result is the normalized outcome of a send operation. Transport and
// API-level failures are folded into it so callers never handle errors
// beyond inspecting OK.
type Result struct {
	OK          bool
	Description string
}

// Client calls the Telegram Bot API for a single bot token.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewClient creates a Telegram client. baseURL is overridable for tests;
// pass "" for the production endpoint.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// SendMessage sends a text message. parseMode may be empty.
func (c *Client) SendMessage(ctx context.Context, chatID, text, parseMode string) Result {
	payload := map[string]string{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.failure("sendMessage", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return c.failure("sendMessage", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do("sendMessage", req)
}

// SendPhoto sends PNG bytes as a photo with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID string, photo []byte, caption string) Result {
	fields := map[string]string{"chat_id": chatID}
	if caption != "" {
		fields["caption"] = caption
	}
	return c.sendFile(ctx, "sendPhoto", "photo", "image.png", "image/png", photo, fields)
}

// SendDocument sends byte content as a CSV file attachment.
func (c *Client) SendDocument(ctx context.Context, chatID, filename string, data []byte) Result {
	fields := map[string]string{"chat_id": chatID}
	return c.sendFile(ctx, "sendDocument", "document", filename, "text/csv", data, fields)
}

func (c *Client) sendFile(ctx context.Context, method, fieldName, filename, mimeType string, data []byte, fields map[string]string) Result {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return c.failure(method, err)
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, filename))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return c.failure(method, err)
	}
	if _, err := part.Write(data); err != nil {
		return c.failure(method, err)
	}
	if err := mw.Close(); err != nil {
		return c.failure(method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), &buf)
	if err != nil {
		return c.failure(method, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(method, req)
}

func (c *Client) do(method string, req *http.Request) Result {
	resp, err := c.http.Do(req)
	if err != nil {
		return c.failure(method, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(raw, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !apiResp.OK {
		desc := apiResp.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		c.logger.Warn("telegram API error", "method", method, "status", resp.StatusCode, "description", desc)
		return Result{OK: false, Description: desc}
	}

	return Result{OK: true}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *Client) failure(method string, err error) Result {
	c.logger.Warn("telegram request failed", "method", method, "error", err)
	return Result{OK: false, Description: err.Error()}
}
