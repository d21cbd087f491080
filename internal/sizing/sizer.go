package sizing

import (
	"math"
	"time"

	"github.com/user/transcript/internal/types"
)

// HeaderLayout is the time format of section headers.
const HeaderLayout = "Mon Jan 2, 3:04 PM"

// Sizer answers height queries through the cache, measuring on a miss.
type Sizer struct {
	cache    *Cache
	registry *Registry
	metrics  Metrics
	location *time.Location
}

// SizerOption configures a Sizer.
type SizerOption func(*Sizer)

func WithRegistry(r *Registry) SizerOption {
	return func(s *Sizer) { s.registry = r }
}

// WithLocation sets the zone section headers are formatted in.
func WithLocation(loc *time.Location) SizerOption {
	return func(s *Sizer) { s.location = loc }
}

func NewSizer(m Metrics, opts ...SizerOption) *Sizer {
	s := &Sizer{
		cache:    NewCache(),
		metrics:  m,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = DefaultRegistry(m)
	}
	return s
}

func (s *Sizer) Cache() *Cache {
	return s.cache
}

func (s *Sizer) Metrics() Metrics {
	return s.metrics
}

// RowHeight returns the height of event rendered at pos. Rows with details
// visible are measured every time and never cached.
func (s *Sizer) RowHeight(event *types.Event, pos types.ListPosition, detailsVisible bool, width float64) float64 {
	if event == nil {
		return 0
	}
	if h, ok := s.cache.Height(event.Seq, pos, detailsVisible); ok {
		return h
	}
	h := s.measureRow(event, pos, detailsVisible, width)
	s.cache.Store(h, event.Seq, pos, detailsVisible)
	return h
}

// Remeasure skips the cache read for one row and stores the fresh result.
func (s *Sizer) Remeasure(event *types.Event, pos types.ListPosition, width float64) float64 {
	if event == nil {
		return 0
	}
	h := s.measureRow(event, pos, false, width)
	s.cache.Store(h, event.Seq, pos, false)
	return h
}

func (s *Sizer) measureRow(event *types.Event, pos types.ListPosition, detailsVisible bool, width float64) float64 {
	if width <= 0 {
		return 0
	}
	m, ok := s.registry.Lookup(event.Kind)
	if !ok {
		return 0
	}
	h := m.Measure(event.Payload, width)
	switch pos {
	case types.ListPositionNone, types.ListPositionFirstOfMany:
		h += s.metrics.GroupSpacing
	default:
		h += s.metrics.RunSpacing
	}
	if detailsVisible && event.Kind != types.KindPicture {
		h += s.metrics.DetailLabelHeight
	}
	return math.Ceil(h)
}

// HeaderHeight returns the height of the section header showing ts.
func (s *Sizer) HeaderHeight(ts int64, width float64) float64 {
	if h, ok := s.cache.HeaderHeight(ts); ok {
		return h
	}
	var h float64
	if width > 0 {
		label := time.UnixMicro(ts).In(s.location).Format(HeaderLayout)
		lines := wrappedLines(label, s.metrics.columns(width))
		h = math.Ceil(float64(lines)*s.metrics.LineHeight + s.metrics.HeaderPaddingY)
	}
	s.cache.StoreHeaderHeight(h, ts)
	return h
}

// TypingIndicatorHeight returns the height of the typing row. Its content
// never varies, so one slot is enough.
func (s *Sizer) TypingIndicatorHeight(width float64) float64 {
	if h, ok := s.cache.TypingIndicatorHeight(); ok {
		return h
	}
	var h float64
	if width > 0 {
		h = math.Ceil(s.metrics.TypingHeight + s.metrics.GroupSpacing)
	}
	s.cache.StoreTypingIndicatorHeight(h)
	return h
}
