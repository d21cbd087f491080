package types

import (
	"encoding/json"
	"time"
)

type EventKind string

const (
	KindText            EventKind = "text"
	KindPicture         EventKind = "picture"
	KindItemList        EventKind = "item_list"
	KindItemCarousel    EventKind = "item_carousel"
	KindNewRep          EventKind = "new_rep"
	KindConversationEnd EventKind = "conversation_end"

	// Wire-only kinds. They arrive in event feeds but never render as rows.
	KindTypingStatus EventKind = "typing_status"
	KindSwitchSRS    EventKind = "switch_srs"
)

// KnownKinds lists every kind that has a row representation.
func KnownKinds() []EventKind {
	return []EventKind{
		KindText,
		KindPicture,
		KindItemList,
		KindItemCarousel,
		KindNewRep,
		KindConversationEnd,
	}
}

// Event is one timeline entry. Seq is its identity; Timestamp and CreatedAt
// are microseconds since the Unix epoch.
type Event struct {
	Seq       int64           `json:"seq"`
	Timestamp int64           `json:"timestamp"`
	CreatedAt int64           `json:"created_at"`
	Kind      EventKind       `json:"kind"`
	IsReply   bool            `json:"is_reply"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	if e.Payload != nil {
		c.Payload = append(json.RawMessage(nil), e.Payload...)
	}
	return &c
}

// Time returns Timestamp as a time.Time.
func (e *Event) Time() time.Time {
	return time.UnixMicro(e.Timestamp)
}

// MicrosFromTime converts t to microseconds since the epoch.
func MicrosFromTime(t time.Time) int64 {
	return t.UnixMicro()
}

// ListPosition classifies a row against its same-section neighbours by
// direction. It drives bubble corner rounding and is part of the size cache key.
type ListPosition int

const (
	ListPositionNone ListPosition = iota
	ListPositionFirstOfMany
	ListPositionMiddleOfMany
	ListPositionLastOfMany
)

func (p ListPosition) String() string {
	switch p {
	case ListPositionFirstOfMany:
		return "first"
	case ListPositionMiddleOfMany:
		return "middle"
	case ListPositionLastOfMany:
		return "last"
	default:
		return "none"
	}
}

// Position is a (section, row) index path.
type Position struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// Edge selects which edge of a row a scroll should align with.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeBottom {
		return "bottom"
	}
	return "top"
}
