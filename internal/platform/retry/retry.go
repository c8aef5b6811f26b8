// Package retry wraps one operation with bounded, schedule-driven retries.
// Delays follow an explicit schedule with no jitter so tests can assert the
// cumulative wait exactly
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the attempts and the delay between them
type Policy struct {
	// Attempts is the total call budget including the first try
	Attempts int

	// Schedule holds the delay before each retry; when shorter than
	// Attempts-1 the last entry repeats
	Schedule []time.Duration
}

// DefaultPolicy matches the subsystem defaults: 3 attempts, {1s, 2s, 4s}
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Schedule: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// ExhaustedError aggregates the final failure with the attempt count
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// scheduleBackOff walks an explicit delay list, repeating the last entry,
// and stops once budget delays have been handed out
type scheduleBackOff struct {
	sched  []time.Duration
	budget int
	i      int
}

func (b *scheduleBackOff) NextBackOff() time.Duration {
	if b.i >= b.budget || len(b.sched) == 0 {
		return backoff.Stop
	}
	idx := b.i
	if idx >= len(b.sched) {
		idx = len(b.sched) - 1
	}
	b.i++
	return b.sched[idx]
}

func (b *scheduleBackOff) Reset() { b.i = 0 }

// Do runs op up to p.Attempts times. Every failure is retried; retryability
// classification deliberately stays out of this layer. The final failure is
// wrapped in *ExhaustedError; context cancellation surfaces as the ctx error
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	attempts := 0
	bo := backoff.WithContext(&scheduleBackOff{sched: p.Schedule, budget: p.Attempts - 1}, ctx)

	err := backoff.Retry(func() error {
		attempts++
		return op(ctx)
	}, bo)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &ExhaustedError{Attempts: attempts, Last: err}
}

// DoValue is Do for operations returning a value
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		var err error
		out, err = op(ctx)
		return err
	})
	return out, err
}
