package core

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role belongs to the closed set a conversation accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single conversation entry. Fields are set at construction and
// not mutated afterwards.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMessage builds a Message stamped with the current UTC time. The role must
// be system, user or assistant; anything else fails with ErrInvalidRole.
// Content is not validated, an empty string is a legal placeholder.
func NewMessage(role Role, content string, metadata map[string]any) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}, nil
}

// APIMessage is the wire shape sent to a completion endpoint: role and content
// only, timestamp and metadata stripped.
type APIMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToAPI strips a message down to its wire shape.
func (m Message) ToAPI() APIMessage {
	return APIMessage{Role: m.Role, Content: m.Content}
}
