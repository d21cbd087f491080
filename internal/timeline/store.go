package timeline

import (
	"log/slog"
	"sort"
	"time"

	"github.com/user/transcript/internal/types"
)

// DefaultThreshold is the largest gap between consecutive events that keeps
// them in the same section.
const DefaultThreshold = 4 * time.Minute

// EventStore keeps events sorted by Seq and grouped into sections. A new
// section starts whenever an event's timestamp is at least threshold past
// the previous event's timestamp.
type EventStore struct {
	threshold int64 // microseconds
	supported map[types.EventKind]bool

	all      []*types.Event
	sections [][]*types.Event
}

// Option configures an EventStore.
type Option func(*EventStore)

// WithThreshold sets the section gap. Non-positive values are ignored.
func WithThreshold(d time.Duration) Option {
	return func(s *EventStore) {
		if d > 0 {
			s.threshold = d.Microseconds()
		}
	}
}

// WithSupportedKinds replaces the set of kinds the store accepts.
func WithSupportedKinds(kinds ...types.EventKind) Option {
	return func(s *EventStore) {
		s.supported = make(map[types.EventKind]bool, len(kinds))
		for _, k := range kinds {
			s.supported[k] = true
		}
	}
}

// New creates an empty EventStore. By default it accepts every kind in
// types.KnownKinds and sections with DefaultThreshold.
func New(opts ...Option) *EventStore {
	s := &EventStore{threshold: DefaultThreshold.Microseconds()}
	WithSupportedKinds(types.KnownKinds()...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the section gap.
func (s *EventStore) Threshold() time.Duration {
	return time.Duration(s.threshold) * time.Microsecond
}

// Supports reports whether events of kind are accepted.
func (s *EventStore) Supports(kind types.EventKind) bool {
	return s.supported[kind]
}

// Reload replaces all state with events. Unsupported kinds are dropped.
// When a Seq repeats, the first occurrence in events is kept.
func (s *EventStore) Reload(events []*types.Event) {
	seen := make(map[int64]bool, len(events))
	sorted := make([]*types.Event, 0, len(events))
	for _, e := range events {
		if e == nil || !s.supported[e.Kind] || seen[e.Seq] {
			continue
		}
		seen[e.Seq] = true
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})

	s.all = make([]*types.Event, 0, len(sorted))
	s.sections = nil
	for _, e := range sorted {
		s.push(e)
	}
}

// Merge folds incoming into the store. When a Seq appears in both, the
// incoming event wins. An empty incoming list is a no-op.
func (s *EventStore) Merge(incoming []*types.Event) {
	if len(incoming) == 0 {
		return
	}

	// New before old: Reload keeps the first occurrence of a Seq.
	combined := make([]*types.Event, 0, len(incoming)+len(s.all))
	combined = append(combined, incoming...)
	combined = append(combined, s.all...)
	s.Reload(combined)
}

// Append adds event at the end of the timeline. It returns false without
// modifying the store when the kind is unsupported or event.Seq is not
// greater than every stored Seq.
func (s *EventStore) Append(event *types.Event) (types.Position, bool) {
	if event == nil || !s.supported[event.Kind] {
		return types.Position{}, false
	}
	if last := s.LastEvent(); last != nil && event.Seq <= last.Seq {
		slog.Debug("timeline: rejected out-of-order append",
			"seq", event.Seq, "max_seq", last.Seq)
		return types.Position{}, false
	}

	s.push(event)
	return s.PositionOf(event.Seq)
}

// Update swaps in a new version of a stored event, keeping the stored
// CreatedAt and Timestamp. Sections are not recomputed, so an update never
// moves an event. It returns false when no event has event.Seq or the new
// version has an unsupported kind.
func (s *EventStore) Update(event *types.Event) (types.Position, bool) {
	if event == nil || !s.supported[event.Kind] {
		return types.Position{}, false
	}
	pos, ok := s.PositionOf(event.Seq)
	if !ok {
		slog.Debug("timeline: unable to locate event for update", "seq", event.Seq)
		return types.Position{}, false
	}

	original := s.sections[pos.Section][pos.Row]
	updated := event.Clone()
	updated.CreatedAt = original.CreatedAt
	updated.Timestamp = original.Timestamp

	for i, e := range s.all {
		if e.Seq == event.Seq {
			s.all[i] = updated
			break
		}
	}
	s.sections[pos.Section][pos.Row] = updated
	return pos, true
}

// push appends e to the last section or opens a new one. Caller guarantees
// e sorts after every stored event.
func (s *EventStore) push(e *types.Event) {
	s.all = append(s.all, e)

	n := len(s.sections)
	if n == 0 {
		s.sections = append(s.sections, []*types.Event{e})
		return
	}
	last := s.sections[n-1][len(s.sections[n-1])-1]
	if e.Timestamp < last.Timestamp+s.threshold {
		s.sections[n-1] = append(s.sections[n-1], e)
	} else {
		s.sections = append(s.sections, []*types.Event{e})
	}
}
