package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/transcript/internal/types"
)

type memorySink struct {
	mu     sync.Mutex
	keys   []types.ConversationKey
	max    map[types.ConversationKey]int64
	merged map[types.ConversationKey][]*types.Event
}

func newMemorySink(keys ...types.ConversationKey) *memorySink {
	return &memorySink{
		keys:   keys,
		max:    make(map[types.ConversationKey]int64),
		merged: make(map[types.ConversationKey][]*types.Event),
	}
}

func (s *memorySink) Keys() []types.ConversationKey { return s.keys }

func (s *memorySink) MaxSeq(_ context.Context, key types.ConversationKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max[key], nil
}

func (s *memorySink) MergeEvents(_ context.Context, key types.ConversationKey, events []*types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merged[key] = append(s.merged[key], events...)
	for _, e := range events {
		s.max[key] = max(s.max[key], e.Seq)
	}
	return nil
}

func TestPollOnceFetchesAfterMaxSeq(t *testing.T) {
	sink := newMemorySink("api:1")
	sink.max["api:1"] = 10

	var gotAfter int64
	f := fetcherFunc(func(_ context.Context, _ types.ConversationKey, after int64) ([]*types.Event, error) {
		gotAfter = after
		return []*types.Event{{Seq: 11, Kind: types.KindText}, {Seq: 12, Kind: types.KindText}}, nil
	})

	n, err := NewPoller(f, sink, "").PollOnce(context.Background(), "api:1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(10), gotAfter)
	assert.Len(t, sink.merged["api:1"], 2)
}

func TestPollOnceNothingNew(t *testing.T) {
	sink := newMemorySink("api:1")
	f := fetcherFunc(func(context.Context, types.ConversationKey, int64) ([]*types.Event, error) {
		return nil, nil
	})

	n, err := NewPoller(f, sink, "").PollOnce(context.Background(), "api:1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.merged)
}

func TestPollAllSkipsFailures(t *testing.T) {
	sink := newMemorySink("api:bad", "telegram:1", "api:good")
	reg := NewRegistry()
	reg.Register("api:", fetcherFunc(func(_ context.Context, key types.ConversationKey, _ int64) ([]*types.Event, error) {
		if key == "api:bad" {
			return nil, errors.New("boom")
		}
		return []*types.Event{{Seq: 1, Kind: types.KindText}}, nil
	}))

	NewPoller(reg, sink, "").PollAll(context.Background())
	assert.Len(t, sink.merged["api:good"], 1)
	assert.NotContains(t, sink.merged, types.ConversationKey("api:bad"))
	assert.NotContains(t, sink.merged, types.ConversationKey("telegram:1"))
}

func TestPollerInvalidSchedule(t *testing.T) {
	p := NewPoller(NewRegistry(), newMemorySink(), "not a schedule")
	assert.Error(t, p.Start(context.Background()))
}

func TestPollerFiresOnSchedule(t *testing.T) {
	sink := newMemorySink("api:1")
	var fires atomic.Int32
	f := fetcherFunc(func(context.Context, types.ConversationKey, int64) ([]*types.Event, error) {
		fires.Add(1)
		return nil, nil
	})

	p := NewPoller(f, sink, "* * * * * *")
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, func() bool { return fires.Load() > 0 }, 2500*time.Millisecond, 100*time.Millisecond)
}
