package types

import (
	"strings"

	"github.com/google/uuid"
)

type ConversationKey string
type ConversationID string
type JobID string

func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

func NewJobID() JobID {
	return JobID(uuid.New().String())
}

// NewConversationKey joins parts with ":" so keys carry their source as a
// prefix, e.g. "telegram:12345".
func NewConversationKey(parts ...string) ConversationKey {
	return ConversationKey(strings.Join(parts, ":"))
}

// Source returns the first segment of the key.
func (k ConversationKey) Source() string {
	s := string(k)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}
