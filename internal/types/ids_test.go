package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConversationID(t *testing.T) {
	a := NewConversationID()
	b := NewConversationID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestNewConversationKey(t *testing.T) {
	key := NewConversationKey("telegram", "123", "456")
	assert.Equal(t, ConversationKey("telegram:123:456"), key)
	assert.Equal(t, "telegram", key.Source())
	assert.Equal(t, "plain", ConversationKey("plain").Source())
}
