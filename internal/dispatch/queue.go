package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/user/transcript/internal/types"
)

const laneBuffer = 100

// ErrStopped is returned by Enqueue once the queue has been stopped.
var ErrStopped = errors.New("dispatch: queue stopped")

// Queue manages per-conversation lanes with a global concurrency semaphore.
// Each conversation gets its own FIFO channel (lane) so jobs against one
// ViewSync never overlap, while the semaphore limits how many lanes run a
// job at the same time.
type Queue struct {
	lanes     map[types.ConversationKey]chan *Job
	semaphore *semaphore.Weighted
	processor func(*Job) error
	active    atomic.Int64
	stopped   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// NewQueue creates a Queue that allows up to maxConcurrent jobs to execute
// simultaneously across all lanes.
func NewQueue(maxConcurrent int64) *Queue {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Queue{
		lanes:     make(map[types.ConversationKey]chan *Job),
		semaphore: semaphore.NewWeighted(maxConcurrent),
	}
}

// Start initialises the queue's context. Must be called before Enqueue.
func (q *Queue) Start(ctx context.Context) {
	q.ctx, q.cancel = context.WithCancel(ctx)
}

// Stop cancels the queue context, closes all lanes, and waits for in-flight
// jobs to finish.
func (q *Queue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.mu.Lock()
	if !q.stopped {
		q.stopped = true
		for _, lane := range q.lanes {
			close(lane)
		}
	}
	q.mu.Unlock()
	q.wg.Wait()
}

// Enqueue adds a Job to its conversation's lane, creating the lane (and its
// goroutine) on first use. Returns an error if the lane's buffer is full.
func (q *Queue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || q.ctx == nil || q.ctx.Err() != nil {
		return ErrStopped
	}

	lane, exists := q.lanes[job.Key]
	if !exists {
		lane = make(chan *Job, laneBuffer)
		q.lanes[job.Key] = lane
		q.wg.Add(1)
		go q.processLane(job.Key, lane)
	}

	select {
	case lane <- job:
		return nil
	default:
		return fmt.Errorf("queue full for conversation %s", job.Key)
	}
}

// processLane drains a single lane, acquiring a semaphore slot before
// running the processor synchronously. Jobs still buffered when the queue
// stops finish with ErrStopped.
func (q *Queue) processLane(key types.ConversationKey, lane chan *Job) {
	defer q.wg.Done()
	for {
		select {
		case job, ok := <-lane:
			if !ok {
				return
			}
			if err := q.semaphore.Acquire(q.ctx, 1); err != nil {
				job.finish(ErrStopped)
				q.drain(lane)
				return
			}
			q.active.Add(1)
			job.start()
			var err error
			if q.processor != nil {
				err = q.processor(job)
			}
			if err != nil {
				slog.Error("job failed", "job_id", string(job.ID), "conversation", string(key), "op", job.Op, "error", err)
			}
			job.finish(err)
			q.active.Add(-1)
			q.semaphore.Release(1)
		case <-q.ctx.Done():
			q.drain(lane)
			return
		}
	}
}

// drain fails every job left in lane. Holding mu keeps Enqueue from adding
// more once the context is done.
func (q *Queue) drain(lane chan *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		select {
		case job, ok := <-lane:
			if !ok {
				return
			}
			job.finish(ErrStopped)
		default:
			return
		}
	}
}

// Lanes returns the number of conversations that have a lane.
func (q *Queue) Lanes() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.lanes)
}

// WaitIdle blocks until no jobs are actively being processed, or the timeout
// expires. Returns true if idle, false if timed out.
func (q *Queue) WaitIdle(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if q.active.Load() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// SetProcessor sets the function invoked for each dequeued Job.
func (q *Queue) SetProcessor(fn func(*Job) error) {
	q.processor = fn
}
