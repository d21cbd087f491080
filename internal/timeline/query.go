package timeline

import "github.com/user/transcript/internal/types"

// NumSections returns how many time sections the store holds.
func (s *EventStore) NumSections() int {
	return len(s.sections)
}

// NumRows returns the row count of section, or 0 when out of range.
func (s *EventStore) NumRows(section int) int {
	if section < 0 || section >= len(s.sections) {
		return 0
	}
	return len(s.sections[section])
}

// SectionEvents returns a copy of the events in section.
func (s *EventStore) SectionEvents(section int) []*types.Event {
	if section < 0 || section >= len(s.sections) {
		return nil
	}
	return append([]*types.Event(nil), s.sections[section]...)
}

// EventAt returns the event at (section, row), or false when out of range.
func (s *EventStore) EventAt(section, row int) (*types.Event, bool) {
	if section < 0 || section >= len(s.sections) {
		return nil, false
	}
	events := s.sections[section]
	if row < 0 || row >= len(events) {
		return nil, false
	}
	return events[row], true
}

// PositionOf finds the event with seq. The scan runs newest section first
// since lookups are almost always for recent events.
func (s *EventStore) PositionOf(seq int64) (types.Position, bool) {
	for section := len(s.sections) - 1; section >= 0; section-- {
		events := s.sections[section]
		if len(events) == 0 || events[0].Seq > seq {
			continue
		}
		for row := len(events) - 1; row >= 0; row-- {
			if events[row].Seq == seq {
				return types.Position{Section: section, Row: row}, true
			}
		}
	}
	return types.Position{}, false
}

// Contains reports whether an event with seq is stored.
func (s *EventStore) Contains(seq int64) bool {
	_, ok := s.PositionOf(seq)
	return ok
}

// HeaderTimestamp is the timestamp of the first event in section.
func (s *EventStore) HeaderTimestamp(section int) (int64, bool) {
	e, ok := s.EventAt(section, 0)
	if !ok {
		return 0, false
	}
	return e.Timestamp, true
}

// LastEvent returns the newest event, or nil when empty.
func (s *EventStore) LastEvent() *types.Event {
	if len(s.sections) == 0 {
		return nil
	}
	last := s.sections[len(s.sections)-1]
	return last[len(last)-1]
}

// LastPosition is the position of the last event.
func (s *EventStore) LastPosition() (types.Position, bool) {
	n := len(s.sections)
	if n == 0 {
		return types.Position{}, false
	}
	return types.Position{Section: n - 1, Row: len(s.sections[n-1]) - 1}, true
}

// MaxSeq returns the largest stored Seq, or 0 when empty.
func (s *EventStore) MaxSeq() int64 {
	if last := s.LastEvent(); last != nil {
		return last.Seq
	}
	return 0
}

// IsEmpty reports whether the store holds no events.
func (s *EventStore) IsEmpty() bool {
	return len(s.all) == 0
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	return len(s.all)
}

// Events returns every stored event in ascending Seq order.
func (s *EventStore) Events() []*types.Event {
	return append([]*types.Event(nil), s.all...)
}

// LastReply returns the most recent event from the counterparty.
func (s *EventStore) LastReply() *types.Event {
	for i := len(s.all) - 1; i >= 0; i-- {
		if s.all[i].IsReply {
			return s.all[i]
		}
	}
	return nil
}

// FirstOfRecentReplies returns the first event of the trailing run of
// counterparty events, or nil when the last event is not a reply.
func (s *EventStore) FirstOfRecentReplies() *types.Event {
	var first *types.Event
	for i := len(s.all) - 1; i >= 0 && s.all[i].IsReply; i-- {
		first = s.all[i]
	}
	return first
}

// ListPositionAt classifies the row at (section, row) against its
// neighbours in the same section.
func (s *EventStore) ListPositionAt(section, row int) types.ListPosition {
	e, ok := s.EventAt(section, row)
	if !ok {
		return types.ListPositionNone
	}
	prev, hasPrev := s.EventAt(section, row-1)
	next, hasNext := s.EventAt(section, row+1)
	return ClassifyListPosition(e, prev, hasPrev, next, hasNext)
}

// ClassifyListPosition applies the adjacency rule to e given its optional
// predecessor and successor.
func ClassifyListPosition(e, prev *types.Event, hasPrev bool, next *types.Event, hasNext bool) types.ListPosition {
	prevMatches := hasPrev && prev.IsReply == e.IsReply
	nextMatches := hasNext && next.IsReply == e.IsReply
	switch {
	case prevMatches && nextMatches:
		return types.ListPositionMiddleOfMany
	case nextMatches:
		return types.ListPositionFirstOfMany
	case prevMatches:
		return types.ListPositionLastOfMany
	default:
		return types.ListPositionNone
	}
}
