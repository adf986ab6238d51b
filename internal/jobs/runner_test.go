package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_RejectsNonPositiveInterval(t *testing.T) {
	r := New(context.Background())
	for _, d := range []time.Duration{0, -time.Second} {
		if err := r.Every(d, "noop", func(context.Context) error { return nil }); err == nil {
			t.Fatalf("interval %v accepted", d)
		}
	}
}

func TestEvery_SurvivesPanicAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	r := New(ctx)
	err := r.Every(5*time.Millisecond, "flaky", func(context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return errors.New("still failing")
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if runs.Load() < 3 {
		t.Fatalf("runs = %d, job stopped after panic", runs.Load())
	}
}
