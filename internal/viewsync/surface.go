package viewsync

import "github.com/user/transcript/internal/types"

// Viewport is the host list's scroll geometry.
type Viewport struct {
	Offset        float64 `json:"offset"`
	ContentHeight float64 `json:"content_height"`
	Height        float64 `json:"height"`
	BottomInset   float64 `json:"bottom_inset"`
}

// NearBottom reports whether the viewport is within tolerance of the live
// edge of the transcript.
func (v Viewport) NearBottom(tolerance float64) bool {
	bottom := v.ContentHeight - v.Height - v.BottomInset
	return v.Offset+tolerance >= bottom
}

// Surface is the host's virtualized list. Apply receives one batch per
// ViewSync operation and must apply it as a single update.
type Surface interface {
	Apply(batch []Instruction)
	Viewport() Viewport
	// LastVisibleRow is the last fully visible row, in render coordinates.
	LastVisibleRow() (types.Position, bool)
}
