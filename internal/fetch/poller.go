package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/user/transcript/internal/types"
)

// DefaultSchedule is how often conversations are polled.
const DefaultSchedule = "@every 10s"

// Sink receives polled events. dispatch.Hub satisfies it.
type Sink interface {
	Keys() []types.ConversationKey
	MaxSeq(ctx context.Context, key types.ConversationKey) (int64, error)
	MergeEvents(ctx context.Context, key types.ConversationKey, events []*types.Event) error
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field, plus descriptors like @every.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Poller periodically fetches new events for every known conversation and
// merges them in.
type Poller struct {
	fetcher  types.EventFetcher
	sink     Sink
	schedule string
	cron     *cron.Cron
}

// NewPoller creates a Poller. An empty schedule uses DefaultSchedule.
func NewPoller(fetcher types.EventFetcher, sink Sink, schedule string) *Poller {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Poller{
		fetcher:  fetcher,
		sink:     sink,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the poll job and starts the cron ticker. Polls run with
// ctx until Stop.
func (p *Poller) Start(ctx context.Context) error {
	_, err := p.cron.AddFunc(p.schedule, func() {
		p.PollAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.schedule, err)
	}
	p.cron.Start()
	slog.Info("poller started", "schedule", p.schedule)
	return nil
}

// Stop stops the cron ticker and waits for a running poll to return.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

// PollAll polls every conversation the sink knows about.
func (p *Poller) PollAll(ctx context.Context) {
	for _, key := range p.sink.Keys() {
		if ctx.Err() != nil {
			return
		}
		n, err := p.PollOnce(ctx, key)
		switch {
		case errors.Is(err, ErrNoFetcher):
			slog.Debug("poll skipped", "conversation", string(key))
		case err != nil:
			slog.Warn("poll failed", "conversation", string(key), "error", err)
		case n > 0:
			slog.Debug("poll merged events", "conversation", string(key), "count", n)
		}
	}
}

// PollOnce fetches events newer than what key already holds and merges them.
// It returns how many events were fetched.
func (p *Poller) PollOnce(ctx context.Context, key types.ConversationKey) (int, error) {
	after, err := p.sink.MaxSeq(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read max seq: %w", err)
	}
	events, err := p.fetcher.FetchEvents(ctx, key, after)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}
	if err := p.sink.MergeEvents(ctx, key, events); err != nil {
		return 0, fmt.Errorf("merge events: %w", err)
	}
	return len(events), nil
}
