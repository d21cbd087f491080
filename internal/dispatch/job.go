package dispatch

import (
	"context"
	"time"

	"github.com/user/transcript/internal/types"
	"github.com/user/transcript/internal/viewsync"
)

// JobStatus represents the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusFailed   JobStatus = "failed"
)

// Job is one operation against a conversation's ViewSync. Jobs for the same
// conversation run one at a time, in the order they were enqueued.
type Job struct {
	ID        types.JobID
	Key       types.ConversationKey
	Op        string
	Apply     func(*viewsync.ViewSync) error
	Status    JobStatus
	CreatedAt time.Time
	StartedAt *time.Time
	EndedAt   *time.Time
	Err       error

	done chan struct{}
}

// NewJob creates a Job in the Queued state.
func NewJob(key types.ConversationKey, op string, apply func(*viewsync.ViewSync) error) *Job {
	return &Job{
		ID:        types.NewJobID(),
		Key:       key,
		Op:        op,
		Apply:     apply,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Done is closed once the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its error.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) start() {
	now := time.Now()
	j.StartedAt = &now
	j.Status = JobStatusRunning
}

func (j *Job) finish(err error) {
	now := time.Now()
	j.EndedAt = &now
	j.Err = err
	if err != nil {
		j.Status = JobStatusFailed
	} else {
		j.Status = JobStatusComplete
	}
	close(j.done)
}
