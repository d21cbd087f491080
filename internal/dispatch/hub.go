package dispatch

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

// Conversation is one transcript: its ViewSync and the surface it draws on.
// Both belong to the conversation's lane and must only be touched from jobs.
type Conversation struct {
	ID        types.ConversationID
	Key       types.ConversationKey
	CreatedAt time.Time

	view    *viewsync.ViewSync
	surface *viewsync.Recorder
}

// Transcript is a point-in-time dump of a conversation.
type Transcript struct {
	ID       types.ConversationID     `json:"id"`
	Key      types.ConversationKey    `json:"key"`
	Snapshot viewsync.Snapshot        `json:"snapshot"`
	Recent   [][]viewsync.Instruction `json:"recent"`
}

// SyncFactory builds the ViewSync for a new conversation.
type SyncFactory func(surface viewsync.Surface) *viewsync.ViewSync

const defaultHistory = 32

// Hub resolves conversation keys to conversations and funnels every
// operation on them through the queue.
type Hub struct {
	Queue   *Queue
	newSync SyncFactory
	history int

	mu            sync.RWMutex
	conversations map[types.ConversationKey]*Conversation
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHistory sets how many instruction batches each conversation keeps.
func WithHistory(n int) HubOption {
	return func(h *Hub) { h.history = n }
}

func WithMaxConcurrent(n int64) HubOption {
	return func(h *Hub) { h.Queue = NewQueue(n) }
}

// NewHub creates a Hub. A nil factory builds ViewSyncs with defaults.
func NewHub(factory SyncFactory, opts ...HubOption) *Hub {
	if factory == nil {
		factory = func(s viewsync.Surface) *viewsync.ViewSync { return viewsync.New(s) }
	}
	h := &Hub{
		newSync:       factory,
		history:       defaultHistory,
		conversations: make(map[types.ConversationKey]*Conversation),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.Queue == nil {
		h.Queue = NewQueue(2)
	}
	h.Queue.SetProcessor(h.process)
	return h
}

func (h *Hub) Start(ctx context.Context) {
	h.Queue.Start(ctx)
}

func (h *Hub) Stop() {
	h.Queue.Stop()
}

// Resolve returns the conversation for key, creating it on first use.
func (h *Hub) Resolve(key types.ConversationKey) *Conversation {
	h.mu.RLock()
	c, ok := h.conversations[key]
	h.mu.RUnlock()
	if ok {
		return c
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conversations[key]; ok {
		return c
	}
	surface := viewsync.NewRecorder(h.history)
	c = &Conversation{
		ID:        types.NewConversationID(),
		Key:       key,
		CreatedAt: time.Now(),
		view:      h.newSync(surface),
		surface:   surface,
	}
	h.conversations[key] = c
	return c
}

// Keys lists every known conversation, sorted.
func (h *Hub) Keys() []types.ConversationKey {
	h.mu.RLock()
	keys := make([]types.ConversationKey, 0, len(h.conversations))
	for k := range h.conversations {
		keys = append(keys, k)
	}
	h.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Submit enqueues apply against key's ViewSync without waiting for it.
func (h *Hub) Submit(key types.ConversationKey, op string, apply func(*viewsync.ViewSync) error) (*Job, error) {
	h.Resolve(key)
	job := NewJob(key, op, apply)
	if err := h.Queue.Enqueue(job); err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", op, err)
	}
	return job, nil
}

// Do enqueues apply and waits for it to run.
func (h *Hub) Do(ctx context.Context, key types.ConversationKey, op string, apply func(*viewsync.ViewSync) error) error {
	job, err := h.Submit(key, op, apply)
	if err != nil {
		return err
	}
	return job.Wait(ctx)
}

func (h *Hub) process(job *Job) error {
	if job.Apply == nil {
		return nil
	}
	return job.Apply(h.Resolve(job.Key).view)
}

func (h *Hub) SetEvents(ctx context.Context, key types.ConversationKey, events []*types.Event) error {
	return h.Do(ctx, key, "set_events", func(v *viewsync.ViewSync) error {
		v.SetEvents(events)
		return nil
	})
}

func (h *Hub) MergeEvents(ctx context.Context, key types.ConversationKey, events []*types.Event) error {
	return h.Do(ctx, key, "merge_events", func(v *viewsync.ViewSync) error {
		v.MergeEvents(events)
		return nil
	})
}

// AppendLiveEvent reports whether the event was shown.
func (h *Hub) AppendLiveEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error) {
	var shown bool
	err := h.Do(ctx, key, "append_live_event", func(v *viewsync.ViewSync) error {
		shown = v.AppendLiveEvent(event)
		return nil
	})
	return shown, err
}

// UpdateEvent reports whether an event with the same Seq was shown.
func (h *Hub) UpdateEvent(ctx context.Context, key types.ConversationKey, event *types.Event) (bool, error) {
	var found bool
	err := h.Do(ctx, key, "update_event", func(v *viewsync.ViewSync) error {
		found = v.UpdateEvent(event)
		return nil
	})
	return found, err
}

func (h *Hub) SetTyping(ctx context.Context, key types.ConversationKey, typing bool, preview string) error {
	return h.Do(ctx, key, "set_typing", func(v *viewsync.ViewSync) error {
		v.SetTyping(typing, preview)
		return nil
	})
}

func (h *Hub) ToggleDetail(ctx context.Context, key types.ConversationKey, seq int64) (bool, error) {
	var found bool
	err := h.Do(ctx, key, "toggle_detail", func(v *viewsync.ViewSync) error {
		found = v.ToggleDetailForEvent(seq)
		return nil
	})
	return found, err
}

// MaxSeq is the newest Seq the conversation holds, 0 when empty.
func (h *Hub) MaxSeq(ctx context.Context, key types.ConversationKey) (int64, error) {
	var seq int64
	err := h.Do(ctx, key, "max_seq", func(v *viewsync.ViewSync) error {
		seq = v.Store().MaxSeq()
		return nil
	})
	return seq, err
}

func (h *Hub) Snapshot(ctx context.Context, key types.ConversationKey) (*Transcript, error) {
	c := h.Resolve(key)
	var t *Transcript
	err := h.Do(ctx, key, "snapshot", func(v *viewsync.ViewSync) error {
		t = &Transcript{
			ID:       c.ID,
			Key:      c.Key,
			Snapshot: v.Snapshot(),
			Recent:   c.surface.Batches(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
