package viewsync

import "github.com/user/transcript/internal/types"

const defaultRecorderHistory = 256

// Recorder is a Surface with no screen behind it. It keeps the most recent
// batches and reports whatever geometry it was last given. Headless
// conversations and tests use it.
type Recorder struct {
	history int
	batches [][]Instruction

	viewport    Viewport
	lastVisible *types.Position
}

// NewRecorder keeps up to history batches; history <= 0 uses a default.
func NewRecorder(history int) *Recorder {
	if history <= 0 {
		history = defaultRecorderHistory
	}
	return &Recorder{history: history}
}

func (r *Recorder) Apply(batch []Instruction) {
	r.batches = append(r.batches, append([]Instruction(nil), batch...))
	if over := len(r.batches) - r.history; over > 0 {
		r.batches = r.batches[over:]
	}
}

func (r *Recorder) Viewport() Viewport {
	return r.viewport
}

func (r *Recorder) LastVisibleRow() (types.Position, bool) {
	if r.lastVisible == nil {
		return types.Position{}, false
	}
	return *r.lastVisible, true
}

func (r *Recorder) SetViewport(v Viewport) {
	r.viewport = v
}

// SetLastVisibleRow sets the row LastVisibleRow reports. A nil position
// means nothing is visible.
func (r *Recorder) SetLastVisibleRow(p *types.Position) {
	if p == nil {
		r.lastVisible = nil
		return
	}
	pos := *p
	r.lastVisible = &pos
}

// Batches returns the recorded batches, oldest first.
func (r *Recorder) Batches() [][]Instruction {
	out := make([][]Instruction, len(r.batches))
	copy(out, r.batches)
	return out
}

// Last returns the most recent batch.
func (r *Recorder) Last() []Instruction {
	if len(r.batches) == 0 {
		return nil
	}
	return r.batches[len(r.batches)-1]
}

func (r *Recorder) Reset() {
	r.batches = nil
}
