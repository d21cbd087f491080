package viewsync

import "github.com/user/transcript/internal/types"

// Row is what the host renders at one render position. Exactly one of
// Event and Typing is set.
type Row struct {
	Event          *types.Event
	Typing         bool
	ListPosition   types.ListPosition
	DetailsVisible bool
}

// NumSections is the render section count. While the typing indicator shows
// there is always at least one section for it to live in.
func (v *ViewSync) NumSections() int {
	n := v.store.NumSections()
	if v.typing && n == 0 {
		return 1
	}
	return n
}

// NumRows is the render row count of section, including the typing row.
func (v *ViewSync) NumRows(section int) int {
	rows := v.store.NumRows(section)
	if v.typing && section == v.NumSections()-1 {
		rows++
	}
	return rows
}

// TypingRow is the render position of the typing indicator.
func (v *ViewSync) TypingRow() (types.Position, bool) {
	if !v.typing {
		return types.Position{}, false
	}
	last := v.NumSections() - 1
	return types.Position{Section: last, Row: v.store.NumRows(last)}, true
}

func (v *ViewSync) Row(section, row int) (Row, bool) {
	if e, ok := v.store.EventAt(section, row); ok {
		return Row{
			Event:          e,
			ListPosition:   v.store.ListPositionAt(section, row),
			DetailsVisible: v.hasExpanded && v.expanded == e.Seq,
		}, true
	}
	if pos, ok := v.TypingRow(); ok && pos.Section == section && pos.Row == row {
		return Row{Typing: true}, true
	}
	return Row{}, false
}

// HeaderTimestamp is the time shown above section. The placeholder section
// that only holds the typing row has none.
func (v *ViewSync) HeaderTimestamp(section int) (int64, bool) {
	return v.store.HeaderTimestamp(section)
}

// RowHeight returns the height of the row at a render position, measuring
// through the cache.
func (v *ViewSync) RowHeight(section, row int) float64 {
	r, ok := v.Row(section, row)
	if !ok {
		return 0
	}
	if r.Typing {
		return v.sizer.TypingIndicatorHeight(v.width)
	}
	if !r.DetailsVisible && v.remeasure[r.Event.Seq] {
		delete(v.remeasure, r.Event.Seq)
		return v.sizer.Remeasure(r.Event, r.ListPosition, v.width)
	}
	return v.sizer.RowHeight(r.Event, r.ListPosition, r.DetailsVisible, v.width)
}

func (v *ViewSync) HeaderHeight(section int) float64 {
	ts, ok := v.HeaderTimestamp(section)
	if !ok {
		return 0
	}
	return v.sizer.HeaderHeight(ts, v.width)
}

// ContentHeight sums every header and row height.
func (v *ViewSync) ContentHeight() float64 {
	var h float64
	for s := 0; s < v.NumSections(); s++ {
		h += v.HeaderHeight(s)
		for r := 0; r < v.NumRows(s); r++ {
			h += v.RowHeight(s, r)
		}
	}
	return h
}
