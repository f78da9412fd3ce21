// Package domain contains core domain types for the HR analyst bot.
package domain

import (
	"time"
)

// Thread represents one logical conversation between a chat and the assistant.
// Threads are created once per chat and never mutated or deleted.
type Thread struct {
	ID        string    `json:"thread_id"`
	ChatID    string    `json:"chat_id"`
	StartedAt time.Time `json:"started_at"`
}

// Message roles in the chat log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Agent names identify which component produced a chat-log entry.
const (
	AgentUser    = "user"
	AgentMain    = "main"
	AgentAnalyst = "analyst"
)

// ChatLogEntry is a single role-tagged message in a thread's history.
type ChatLogEntry struct {
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	AgentName string    `json:"agent_name"`
	Timestamp time.Time `json:"ts"`
}
