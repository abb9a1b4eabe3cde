package core

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

type ConversationID string

// NewConversationID mints an ID prefixed with a UTC timestamp so that IDs
// created in the same process sort in creation order.
func NewConversationID() ConversationID {
	return ConversationID("conv_" + timestamp() + "_" + randomSeed())
}

func timestamp() string {
	return time.Now().UTC().Format("20060102T150405.000000000")
}

func randomSeed() string {
	buffer := make([]byte, 6)
	_, _ = rand.Read(buffer)
	return hex.EncodeToString(buffer)
}
