package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

func textEvent(seq int64, seconds int64, text string) *types.Event {
	payload, _ := json.Marshal(map[string]string{"text": text})
	ts := seconds * int64(time.Second/time.Microsecond)
	return &types.Event{Seq: seq, Timestamp: ts, CreatedAt: ts, Kind: types.KindText, Payload: payload}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(func(s viewsync.Surface) *viewsync.ViewSync {
		return viewsync.New(s, viewsync.WithWidth(320))
	}, WithMaxConcurrent(2))
	hub.Start(context.Background())
	t.Cleanup(hub.Stop)
	return hub
}

func TestHubResolveCreatesOnce(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Resolve("test:1")
	b := hub.Resolve("test:1")
	c := hub.Resolve("test:2")

	assert.Same(t, a, b)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, []types.ConversationKey{"test:1", "test:2"}, hub.Keys())
}

func TestHubOperations(t *testing.T) {
	hub := startHub(t)
	ctx := context.Background()
	key := types.NewConversationKey("test", "ops")

	require.NoError(t, hub.SetEvents(ctx, key, []*types.Event{textEvent(1, 0, "a")}))

	shown, err := hub.AppendLiveEvent(ctx, key, textEvent(2, 5, "b"))
	require.NoError(t, err)
	assert.True(t, shown)

	shown, err = hub.AppendLiveEvent(ctx, key, &types.Event{Seq: 3, Kind: types.KindTypingStatus})
	require.NoError(t, err)
	assert.False(t, shown)

	found, err := hub.UpdateEvent(ctx, key, textEvent(2, 99, "b2"))
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, hub.MergeEvents(ctx, key, []*types.Event{textEvent(7, 700, "c")}))
	require.NoError(t, hub.SetTyping(ctx, key, true, "..."))

	found, err = hub.ToggleDetail(ctx, key, 1)
	require.NoError(t, err)
	assert.True(t, found)

	seq, err := hub.MaxSeq(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	tr, err := hub.Snapshot(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, tr.Key)
	assert.Equal(t, 3, tr.Snapshot.Events)
	assert.True(t, tr.Snapshot.Typing)
	require.Len(t, tr.Snapshot.Sections, 2)
	assert.NotEmpty(t, tr.Recent)
	assert.Equal(t, viewsync.OpExpandDetail, tr.Recent[len(tr.Recent)-1][0].Op)
}

func TestHubConversationsAreIsolated(t *testing.T) {
	hub := startHub(t)
	ctx := context.Background()

	require.NoError(t, hub.SetEvents(ctx, "test:a", []*types.Event{textEvent(1, 0, "a")}))
	require.NoError(t, hub.SetEvents(ctx, "test:b", []*types.Event{textEvent(1, 0, "a"), textEvent(2, 1, "b")}))

	a, err := hub.Snapshot(ctx, "test:a")
	require.NoError(t, err)
	b, err := hub.Snapshot(ctx, "test:b")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Snapshot.Events)
	assert.Equal(t, 2, b.Snapshot.Events)
}

func TestHubDoPropagatesErrors(t *testing.T) {
	hub := startHub(t)
	err := hub.Do(context.Background(), "test:err", "fail", func(*viewsync.ViewSync) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestHubSubmitBeforeStart(t *testing.T) {
	hub := NewHub(nil)
	_, err := hub.Submit("test:x", "noop", nil)
	assert.ErrorIs(t, err, ErrStopped)
}
