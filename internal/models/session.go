package models

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidRole reports whether role is user, assistant or system.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleSystem
}

// Message is one conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Session is a point-in-time copy of a conversation's short-term memory.
type Session struct {
	ID           string    `json:"session_id"`
	Messages     []Message `json:"messages"`
	Queries      []string  `json:"queries"`
	LastAccessed time.Time `json:"last_accessed"`
}
