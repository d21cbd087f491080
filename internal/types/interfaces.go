package types

import (
	"context"
	"encoding/json"
)

// EventFetcher produces timeline events for a conversation. Implementations
// run off the conversation's lane and hand their results back through it.
type EventFetcher interface {
	FetchEvents(ctx context.Context, key ConversationKey, afterSeq int64) ([]*Event, error)
}

// Measurer returns the minimal height needed to render payload at the given
// available width.
type Measurer interface {
	Measure(payload json.RawMessage, width float64) float64
}
