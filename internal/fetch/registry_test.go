package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/transcript/internal/types"
)

type fetcherFunc func(ctx context.Context, key types.ConversationKey, after int64) ([]*types.Event, error)

func (f fetcherFunc) FetchEvents(ctx context.Context, key types.ConversationKey, after int64) ([]*types.Event, error) {
	return f(ctx, key, after)
}

func named(name string, calls *[]string) types.EventFetcher {
	return fetcherFunc(func(_ context.Context, key types.ConversationKey, _ int64) ([]*types.Event, error) {
		*calls = append(*calls, name+" "+string(key))
		return nil, nil
	})
}

func TestRegistryRoutesByPrefix(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.Register("api:", named("api", &calls))
	reg.Register("telegram:", named("telegram", &calls))

	_, err := reg.FetchEvents(context.Background(), "telegram:42", 0)
	require.NoError(t, err)
	_, err = reg.FetchEvents(context.Background(), "api:room", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"telegram telegram:42", "api api:room"}, calls)
}

func TestRegistryLongestPrefixWins(t *testing.T) {
	reg := NewRegistry()
	var calls []string
	reg.Register("api:", named("generic", &calls))
	reg.Register("api:eu:", named("eu", &calls))

	_, err := reg.FetchEvents(context.Background(), "api:eu:7", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"eu api:eu:7"}, calls)
}

func TestRegistryNoFetcher(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.FetchEvents(context.Background(), "unknown:1", 0)
	assert.ErrorIs(t, err, ErrNoFetcher)

	_, ok := reg.Lookup("unknown:1")
	assert.False(t, ok)
}
