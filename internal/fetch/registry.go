package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/user/transcript/internal/types"
)

// ErrNoFetcher is returned when no fetcher is registered for a key.
var ErrNoFetcher = errors.New("no fetcher for conversation key")

// Registry routes fetches to a fetcher based on conversation key prefix
// (e.g. "api:", "telegram:"). The longest matching prefix wins.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]types.EventFetcher
}

// NewRegistry creates an empty fetcher registry.
func NewRegistry() *Registry {
	return &Registry{
		fetchers: make(map[string]types.EventFetcher),
	}
}

// Register adds a fetcher for conversation keys starting with prefix.
func (r *Registry) Register(prefix string, f types.EventFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[prefix] = f
}

// Lookup finds the fetcher for key.
func (r *Registry) Lookup(key types.ConversationKey) (types.EventFetcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best string
	var found types.EventFetcher
	for prefix, f := range r.fetchers {
		if strings.HasPrefix(string(key), prefix) && (found == nil || len(prefix) > len(best)) {
			best, found = prefix, f
		}
	}
	return found, found != nil
}

// FetchEvents implements types.EventFetcher by delegating to the matching
// fetcher.
func (r *Registry) FetchEvents(ctx context.Context, key types.ConversationKey, afterSeq int64) ([]*types.Event, error) {
	f, ok := r.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, key)
	}
	return f.FetchEvents(ctx, key, afterSeq)
}
