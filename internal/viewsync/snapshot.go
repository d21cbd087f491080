package viewsync

import "github.com/user/transcript/internal/types"

// Snapshot is a render-coordinate dump of what the list currently shows.
type Snapshot struct {
	Sections      []SectionSnapshot `json:"sections"`
	Events        int               `json:"events"`
	MaxSeq        int64             `json:"max_seq"`
	Typing        bool              `json:"typing"`
	TypingPreview string            `json:"typing_preview,omitempty"`
	Expanded      *int64            `json:"expanded,omitempty"`
	Width         float64           `json:"width"`
}

type SectionSnapshot struct {
	Header *int64        `json:"header,omitempty"`
	Height float64       `json:"header_height"`
	Rows   []RowSnapshot `json:"rows"`
}

type RowSnapshot struct {
	Seq            int64           `json:"seq,omitempty"`
	Kind           types.EventKind `json:"kind,omitempty"`
	IsReply        bool            `json:"is_reply,omitempty"`
	Typing         bool            `json:"typing,omitempty"`
	ListPosition   string          `json:"list_position,omitempty"`
	DetailsVisible bool            `json:"details_visible,omitempty"`
	Height         float64         `json:"height"`
}

// Snapshot walks every render position. Heights are measured through the
// cache, so taking a snapshot warms it.
func (v *ViewSync) Snapshot() Snapshot {
	snap := Snapshot{
		Events:        v.store.Len(),
		MaxSeq:        v.store.MaxSeq(),
		Typing:        v.typing,
		TypingPreview: v.typingPreview,
		Width:         v.width,
	}
	if seq, ok := v.Expanded(); ok {
		snap.Expanded = &seq
	}

	for s := 0; s < v.NumSections(); s++ {
		sec := SectionSnapshot{Height: v.HeaderHeight(s)}
		if ts, ok := v.HeaderTimestamp(s); ok {
			sec.Header = &ts
		}
		for r := 0; r < v.NumRows(s); r++ {
			row, ok := v.Row(s, r)
			if !ok {
				continue
			}
			rs := RowSnapshot{Typing: row.Typing, Height: v.RowHeight(s, r)}
			if row.Event != nil {
				rs.Seq = row.Event.Seq
				rs.Kind = row.Event.Kind
				rs.IsReply = row.Event.IsReply
				rs.ListPosition = row.ListPosition.String()
				rs.DetailsVisible = row.DetailsVisible
			}
			sec.Rows = append(sec.Rows, rs)
		}
		snap.Sections = append(snap.Sections, sec)
	}
	return snap
}
