package checkpoint

import (
	"time"

	"github.com/qcoder/qcoder/internal/core"
)

// Checkpoint is the persisted form of a conversation: full-fidelity messages
// plus the identity, timestamps and budget needed to resume it.
type Checkpoint struct {
	ConversationID   core.ConversationID `json:"conversation_id"`
	Messages         []core.Message      `json:"messages"`
	Metadata         Metadata            `json:"metadata"`
	MaxContextLength int                 `json:"max_context_length"`
}

// Metadata carries the conversation timestamps through a round trip.
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry summarizes one stored checkpoint for listings.
type Entry struct {
	Name           string              `json:"name"`
	ConversationID core.ConversationID `json:"conversation_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	MessageCount   int                 `json:"message_count"`
}
