// Package llm provides a client for the Yandex Foundation Models
// text-completion API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://llm.api.cloud.yandex.net"

// Message is one prompt message sent to the model.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CompletionRequest configures a single completion call.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer is the interface consumed by components that prompt the model.
type Completer interface {
	// Complete runs the completion and returns the first alternative's text,
	// trimmed of surrounding whitespace.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ClientConfig holds configuration for the completion client.
type ClientConfig struct {
	BaseURL        string
	FolderID       string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Client calls the Yandex Foundation Models completion endpoint.
type Client struct {
	http     *http.Client
	baseURL  string
	folderID string
	apiKey   string
	model    string
	logger   *slog.Logger
}

// NewClient creates a completion client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "yandexgpt"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		folderID: cfg.FolderID,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		logger:   logger,
	}
}

// Complete runs a completion and returns the first alternative's text.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("completion request has no messages")
	}

	// maxTokens is a string in the API JSON, not a number.
	body := map[string]any{
		"modelUri": fmt.Sprintf("gpt://%s/%s", c.folderID, c.model),
		"completionOptions": map[string]any{
			"stream":      false,
			"temperature": req.Temperature,
			"maxTokens":   strconv.Itoa(req.MaxTokens),
		},
		"messages": req.Messages,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := c.baseURL + "/foundationModels/v1/completion"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+c.apiKey)
	httpReq.Header.Set("x-folder-id", c.folderID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("completion returned non-2xx", "status", resp.StatusCode, "body", truncate(string(raw), 500))
		return "", fmt.Errorf("completion http %d: %s", resp.StatusCode, strings.TrimSpace(truncate(string(raw), 500)))
	}

	var apiResp struct {
		Result struct {
			Alternatives []struct {
				Message struct {
					Role string `json:"role"`
					Text string `json:"text"`
				} `json:"message"`
				Status string `json:"status"`
			} `json:"alternatives"`
		} `json:"result"`
	}
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(apiResp.Result.Alternatives) == 0 {
		return "", fmt.Errorf("completion returned no alternatives")
	}

	return strings.TrimSpace(apiResp.Result.Alternatives[0].Message.Text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
