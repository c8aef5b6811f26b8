package retry

import (
	"context"
	stderrs "errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

func TestDoSucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3, Schedule: []time.Duration{time.Millisecond}},
		func(context.Context) error {
			calls++
			return nil
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoRecoversAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3, Schedule: []time.Duration{time.Millisecond}},
		func(context.Context) error {
			calls++
			if calls < 3 {
				return stderrs.New("transient")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustsExactlyNAttempts(t *testing.T) {
	t.Parallel()

	boom := stderrs.New("boom")
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3, Schedule: []time.Duration{time.Millisecond}},
		func(context.Context) error {
			calls++
			return boom
		})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	var ex *ExhaustedError
	if !stderrs.As(err, &ex) {
		t.Fatalf("err = %T, want *ExhaustedError", err)
	}
	if ex.Attempts != 3 {
		t.Fatalf("Attempts = %d, want 3", ex.Attempts)
	}
	if !stderrs.Is(err, boom) {
		t.Fatal("ExhaustedError lost the last cause")
	}
}

func TestDoRespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 5, Schedule: []time.Duration{time.Second}},
		func(context.Context) error {
			calls++
			cancel()
			return stderrs.New("fail")
		})
	if !stderrs.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoValue(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := DoValue(context.Background(), Policy{Attempts: 2, Schedule: []time.Duration{time.Millisecond}},
		func(context.Context) (int, error) {
			calls++
			if calls == 1 {
				return 0, stderrs.New("once")
			}
			return 42, nil
		})
	if err != nil || v != 42 {
		t.Fatalf("v, err = %d, %v", v, err)
	}
}

func TestScheduleWalksConfiguredDelays(t *testing.T) {
	t.Parallel()

	// the default policy hands out exactly 1s then 2s, then stops
	p := DefaultPolicy()
	bo := &scheduleBackOff{sched: p.Schedule, budget: p.Attempts - 1}

	if d := bo.NextBackOff(); d != time.Second {
		t.Fatalf("first delay = %v, want 1s", d)
	}
	if d := bo.NextBackOff(); d != 2*time.Second {
		t.Fatalf("second delay = %v, want 2s", d)
	}
	if d := bo.NextBackOff(); d != backoff.Stop {
		t.Fatalf("third delay = %v, want Stop", d)
	}
}

func TestScheduleRepeatsLastEntry(t *testing.T) {
	t.Parallel()

	// shorter schedule than budget repeats the final delay
	bo := &scheduleBackOff{sched: []time.Duration{time.Second, 2 * time.Second}, budget: 4}

	want := []time.Duration{time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}
	for i, w := range want {
		if d := bo.NextBackOff(); d != w {
			t.Fatalf("delay %d = %v, want %v", i, d, w)
		}
	}
	if d := bo.NextBackOff(); d != backoff.Stop {
		t.Fatalf("after budget = %v, want Stop", d)
	}

	bo.Reset()
	if d := bo.NextBackOff(); d != time.Second {
		t.Fatalf("after Reset = %v, want 1s", d)
	}
}
