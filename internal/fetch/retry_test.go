package fetch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.True(t, policy.ShouldRetry(errors.New("connection refused"), 1))
	assert.False(t, policy.ShouldRetry(errors.New("error"), 4), "should not retry after max attempts")

	assert.Equal(t, 1*time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
}

func TestRetryPolicyNonRetryable(t *testing.T) {
	policy := DefaultRetryPolicy()

	for _, err := range []error{
		errors.New("invalid request"),
		errors.New("unauthorized"),
		errors.New("forbidden"),
		fmt.Errorf("%w: status 404", ErrPermanent),
		context.Canceled,
		fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
		nil,
	} {
		assert.False(t, policy.ShouldRetry(err, 1), "%v", err)
	}
}

func TestRetryPolicyMaxDelayCap(t *testing.T) {
	policy := &RetryPolicy{
		MaxAttempts:  10,
		InitialDelay: 1 * time.Second,
		Multiplier:   10,
		MaxDelay:     5 * time.Second,
	}
	assert.Equal(t, 5*time.Second, policy.NextDelay(3))
}

func fastPolicy() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}
}

func TestRetryPolicyExecute(t *testing.T) {
	var calls int
	err := fastPolicy().Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyExecuteStopsOnPermanent(t *testing.T) {
	var calls int
	err := fastPolicy().Execute(context.Background(), func() error {
		calls++
		return fmt.Errorf("%w: bad key", ErrPermanent)
	})
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyExecuteHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := &RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, Multiplier: 1, MaxDelay: time.Hour}

	var calls int
	err := policy.Execute(ctx, func() error {
		calls++
		cancel()
		return errors.New("temporary failure")
	})
	assert.EqualError(t, err, "temporary failure")
	assert.Equal(t, 1, calls)
}
