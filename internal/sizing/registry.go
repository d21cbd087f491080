package sizing

import (
	"encoding/json"
	"sync"

	"github.com/user/transcript/internal/types"
)

// MeasurerFunc adapts a plain function to types.Measurer.
type MeasurerFunc func(payload json.RawMessage, width float64) float64

func (f MeasurerFunc) Measure(payload json.RawMessage, width float64) float64 {
	return f(payload, width)
}

// Registry maps event kinds to their measurement strategy. New kinds
// register a measurer here without touching the cache.
type Registry struct {
	mu        sync.RWMutex
	measurers map[types.EventKind]types.Measurer
}

func NewRegistry() *Registry {
	return &Registry{measurers: make(map[types.EventKind]types.Measurer)}
}

// Register sets the measurer for kind, replacing any previous one.
func (r *Registry) Register(kind types.EventKind, m types.Measurer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurers[kind] = m
}

func (r *Registry) Lookup(kind types.EventKind) (types.Measurer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.measurers[kind]
	return m, ok
}

// DefaultRegistry registers the built-in measurers for every known kind.
func DefaultRegistry(m Metrics) *Registry {
	r := NewRegistry()
	text := &TextMeasurer{Metrics: m}
	r.Register(types.KindText, text)
	r.Register(types.KindNewRep, text)
	r.Register(types.KindConversationEnd, text)
	r.Register(types.KindPicture, &PictureMeasurer{Metrics: m})
	r.Register(types.KindItemList, &ItemListMeasurer{Metrics: m})
	r.Register(types.KindItemCarousel, &CarouselMeasurer{Metrics: m})
	return r
}
