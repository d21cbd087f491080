// Package viewsync turns timeline mutations into incremental instructions
// for a virtualized list, keeping the reader's position and the row
// adjacency rules intact.
//
// A ViewSync owns its EventStore and size cache exclusively. None of it is
// safe for concurrent use: every call must come from the conversation's
// single logical thread.
package viewsync

import (
	"log/slog"

	"github.com/user/transcript/internal/sizing"
	"github.com/user/transcript/internal/timeline"
	"github.com/user/transcript/internal/types"
)

const (
	DefaultNearBottomTolerance = 120
	DefaultMergeTolerance      = 10
)

// ViewSync coordinates an EventStore, a Sizer and a Surface.
type ViewSync struct {
	store   *timeline.EventStore
	sizer   *sizing.Sizer
	surface Surface
	logger  *slog.Logger

	nearBottomTolerance float64
	mergeTolerance      float64
	animations          bool
	width               float64

	// View-only state. Never part of the store.
	typing        bool
	typingPreview string
	expanded      int64
	hasExpanded   bool
	remeasure     map[int64]bool
	animate       map[int64]bool
}

// Option configures a ViewSync.
type Option func(*ViewSync)

func WithStore(s *timeline.EventStore) Option {
	return func(v *ViewSync) { v.store = s }
}

func WithSizer(s *sizing.Sizer) Option {
	return func(v *ViewSync) { v.sizer = s }
}

func WithNearBottomTolerance(t float64) Option {
	return func(v *ViewSync) { v.nearBottomTolerance = t }
}

func WithMergeTolerance(t float64) Option {
	return func(v *ViewSync) { v.mergeTolerance = t }
}

// WithAnimations enables or disables entrance animations for live events.
func WithAnimations(enabled bool) Option {
	return func(v *ViewSync) { v.animations = enabled }
}

func WithWidth(w float64) Option {
	return func(v *ViewSync) { v.width = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *ViewSync) { v.logger = l }
}

// New creates a ViewSync drawing on surface.
func New(surface Surface, opts ...Option) *ViewSync {
	v := &ViewSync{
		surface:             surface,
		nearBottomTolerance: DefaultNearBottomTolerance,
		mergeTolerance:      DefaultMergeTolerance,
		animations:          true,
		remeasure:           make(map[int64]bool),
		animate:             make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.store == nil {
		v.store = timeline.New()
	}
	if v.sizer == nil {
		v.sizer = sizing.NewSizer(sizing.DefaultMetrics())
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Store exposes the underlying store for read-only queries.
func (v *ViewSync) Store() *timeline.EventStore {
	return v.store
}

func (v *ViewSync) Width() float64 {
	return v.width
}

// SetWidth records the available rendering width. Nearly every cached
// height depends on it, so a change clears the cache.
func (v *ViewSync) SetWidth(w float64) {
	if w == v.width {
		return
	}
	v.width = w
	v.sizer.Cache().Clear()
	clear(v.remeasure)
}

// SetEvents replaces the transcript. This is a cold load: the list is reset
// and scrolled to the bottom regardless of where the reader was.
func (v *ViewSync) SetEvents(events []*types.Event) {
	v.store.Reload(events)
	v.resetViewState()

	batch := []Instruction{ResetAll()}
	batch = append(batch, v.scrollToBottom(false)...)
	v.apply("set_events", batch)
}

// MergeEvents folds a polled batch into the transcript and restores the
// reader's position: to the bottom if they were there, otherwise to the
// event that was last visible.
func (v *ViewSync) MergeEvents(events []*types.Event) {
	if len(events) == 0 {
		return
	}

	wasNearBottom := v.surface.Viewport().NearBottom(v.mergeTolerance)
	var anchor int64
	var hasAnchor bool
	if pos, ok := v.surface.LastVisibleRow(); ok {
		if row, ok := v.Row(pos.Section, pos.Row); ok {
			if row.Typing {
				wasNearBottom = true
			} else {
				anchor, hasAnchor = row.Event.Seq, true
			}
		}
	}

	v.store.Merge(events)
	v.resetViewState()

	batch := []Instruction{ResetAll()}
	if wasNearBottom {
		batch = append(batch, v.scrollToBottom(false)...)
	} else if pos, ok := v.anchorPosition(anchor, hasAnchor); ok {
		batch = append(batch, ScrollTo(pos, types.EdgeBottom, false))
	} else if v.NumSections() > 0 {
		batch = append(batch, ScrollTo(types.Position{}, types.EdgeTop, false))
	}
	v.apply("merge_events", batch)
}

// AppendLiveEvent splices a pushed event onto the end of the transcript.
// It returns false when the event was not shown.
//
// Events the store cannot append are routed: a Seq already present is
// treated as an edit, and an older Seq goes through MergeEvents.
func (v *ViewSync) AppendLiveEvent(event *types.Event) bool {
	if event == nil {
		return false
	}
	if !v.store.Supports(event.Kind) {
		v.logger.Debug("viewsync: dropped unsupported event", "seq", event.Seq, "kind", event.Kind)
		return false
	}
	if v.store.Contains(event.Seq) {
		return v.UpdateEvent(event)
	}
	if !v.store.IsEmpty() && event.Seq < v.store.MaxSeq() {
		v.logger.Debug("viewsync: out-of-order live event, merging",
			"seq", event.Seq, "max_seq", v.store.MaxSeq())
		v.MergeEvents([]*types.Event{event})
		return v.store.Contains(event.Seq)
	}

	wasNearBottom := v.surface.Viewport().NearBottom(v.nearBottomTolerance)
	sectionsBefore := v.store.NumSections()

	pos, ok := v.store.Append(event)
	if !ok {
		return false
	}

	var batch []Instruction
	switch {
	case pos.Section < sectionsBefore:
		if pos.Row > 0 {
			// The previous row may have gained a same-direction neighbour.
			batch = append(batch, ReloadRow(types.Position{Section: pos.Section, Row: pos.Row - 1}))
		}
		batch = append(batch, InsertRow(pos))
	case !v.typing:
		batch = append(batch, InsertSection(pos.Section))
	case sectionsBefore == 0:
		// The typing row's placeholder section becomes the first real one.
		batch = append(batch, InsertRow(pos))
	default:
		// The typing row has to move into the new section.
		batch = append(batch, ResetAll())
	}

	if wasNearBottom && v.animations {
		v.animate[event.Seq] = true
		batch = append(batch, AnimateRow(pos))
	}
	if wasNearBottom {
		batch = append(batch, v.scrollToBottom(v.animations)...)
	}
	v.apply("append_live_event", batch)
	return true
}

// UpdateEvent replaces a shown event in place. No scrolling, no animation.
// When the edit flips the event's direction, the rows beside it in the same
// section are reloaded too, since their list positions follow it.
func (v *ViewSync) UpdateEvent(event *types.Event) bool {
	if event == nil {
		return false
	}
	var wasReply bool
	if old, ok := v.eventFor(event.Seq); ok {
		wasReply = old.IsReply
	}
	pos, ok := v.store.Update(event)
	if !ok {
		v.logger.Debug("viewsync: update for unknown event", "seq", event.Seq)
		return false
	}
	v.sizer.Cache().Forget(event.Seq)

	if wasReply == event.IsReply {
		v.apply("update_event", []Instruction{ReloadRow(pos)})
		return true
	}
	var batch []Instruction
	for row := pos.Row - 1; row <= pos.Row+1; row++ {
		neighbour, ok := v.store.EventAt(pos.Section, row)
		if !ok {
			continue
		}
		v.sizer.Cache().Forget(neighbour.Seq)
		batch = append(batch, ReloadRow(types.Position{Section: pos.Section, Row: row}))
	}
	v.apply("update_event", batch)
	return true
}

// SetTyping shows or hides the counterparty typing indicator, an extra row
// after the last section.
func (v *ViewSync) SetTyping(isTyping bool, preview string) {
	if isTyping == v.typing {
		if isTyping && preview != v.typingPreview {
			v.typingPreview = preview
			if pos, ok := v.TypingRow(); ok {
				v.apply("typing_preview", []Instruction{ReloadRow(pos)})
			}
		}
		return
	}

	wasNearBottom := v.surface.Viewport().NearBottom(v.nearBottomTolerance)
	v.typing = isTyping
	v.typingPreview = ""
	if isTyping {
		v.typingPreview = preview
	}

	batch := []Instruction{ResetAll()}
	if isTyping && wasNearBottom {
		batch = append(batch, v.scrollToBottom(false)...)
	}
	v.apply("set_typing", batch)
}

// ToggleDetailForEvent expands the timestamp of the event with seq,
// collapsing whichever event was expanded before. Toggling the expanded
// event collapses it. It returns false when seq is not shown.
func (v *ViewSync) ToggleDetailForEvent(seq int64) bool {
	pos, ok := v.store.PositionOf(seq)
	if !ok {
		return false
	}

	var batch []Instruction
	if v.hasExpanded {
		previous := v.expanded
		v.hasExpanded = false
		if prevPos, ok := v.store.PositionOf(previous); ok {
			v.remeasure[previous] = true
			batch = append(batch, CollapseDetail(prevPos))
		}
		if previous == seq {
			v.apply("toggle_detail", batch)
			return true
		}
	}

	v.expanded, v.hasExpanded = seq, true
	batch = append(batch, ExpandDetail(pos))
	v.apply("toggle_detail", batch)
	return true
}

// Expanded returns the seq of the event showing its details.
func (v *ViewSync) Expanded() (int64, bool) {
	return v.expanded, v.hasExpanded
}

func (v *ViewSync) IsTyping() bool {
	return v.typing
}

func (v *ViewSync) TypingPreview() string {
	return v.typingPreview
}

// ShouldAnimate reports whether the row for seq still owes its entrance
// animation. The mark is consumed.
func (v *ViewSync) ShouldAnimate(seq int64) bool {
	if !v.animate[seq] {
		return false
	}
	delete(v.animate, seq)
	return true
}

func (v *ViewSync) eventFor(seq int64) (*types.Event, bool) {
	pos, ok := v.store.PositionOf(seq)
	if !ok {
		return nil, false
	}
	return v.store.EventAt(pos.Section, pos.Row)
}

func (v *ViewSync) anchorPosition(seq int64, ok bool) (types.Position, bool) {
	if !ok {
		return types.Position{}, false
	}
	return v.store.PositionOf(seq)
}

func (v *ViewSync) resetViewState() {
	v.sizer.Cache().Clear()
	clear(v.remeasure)
	clear(v.animate)
	if v.hasExpanded && !v.store.Contains(v.expanded) {
		v.hasExpanded = false
	}
}

func (v *ViewSync) scrollToBottom(animated bool) []Instruction {
	last := v.NumSections() - 1
	if last < 0 {
		return nil
	}
	row := v.NumRows(last) - 1
	if row < 0 {
		return nil
	}
	return []Instruction{ScrollTo(types.Position{Section: last, Row: row}, types.EdgeBottom, animated)}
}

func (v *ViewSync) apply(op string, batch []Instruction) {
	if len(batch) == 0 {
		return
	}
	v.logger.Debug("viewsync: apply", "op", op, "instructions", len(batch),
		"sections", v.store.NumSections(), "events", v.store.Len())
	v.surface.Apply(batch)
}
