package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopTicksImmediately(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop("test", time.Hour, 0, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, nil)

	if !l.Start(context.Background()) {
		t.Fatal("first Start should succeed")
	}
	defer l.Stop()

	waitFor(t, "first tick", func() bool { return ticks.Load() == 1 })
}

func TestLoopStartIsNoopWhileRunning(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop("test", time.Hour, 0, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, nil)

	l.Start(context.Background())
	defer l.Stop()
	if l.Start(context.Background()) {
		t.Error("second Start should be a no-op")
	}

	waitFor(t, "first tick", func() bool { return ticks.Load() >= 1 })
	time.Sleep(50 * time.Millisecond)
	if got := ticks.Load(); got != 1 {
		t.Errorf("ticks = %d, want 1 (loops must not stack)", got)
	}
}

func TestLoopTicksNeverOverlap(t *testing.T) {
	var inFlight, maxInFlight, ticks atomic.Int32
	l := NewLoop("test", 5*time.Millisecond, time.Second, func(context.Context) error {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		ticks.Add(1)
		return nil
	}, nil)

	l.Start(context.Background())
	waitFor(t, "several ticks", func() bool { return ticks.Load() >= 3 })
	l.Stop()

	if got := maxInFlight.Load(); got != 1 {
		t.Errorf("max in-flight ticks = %d, want 1", got)
	}
}

func TestLoopStopCancelsTick(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool
	l := NewLoop("test", time.Hour, time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, nil)

	l.Start(context.Background())
	<-started
	l.Stop()

	if !cancelled.Load() {
		t.Error("Stop should cancel the in-flight tick and wait for it")
	}
	if l.Running() {
		t.Error("loop still running after Stop")
	}
	l.Stop()
}

func TestLoopTickTimeout(t *testing.T) {
	deadlines := make(chan time.Duration, 1)
	l := NewLoop("test", time.Hour, 50*time.Millisecond, func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		if !ok {
			deadlines <- 0
			return nil
		}
		deadlines <- time.Until(d)
		return nil
	}, nil)

	l.Start(context.Background())
	defer l.Stop()

	got := <-deadlines
	if got <= 0 || got > 50*time.Millisecond {
		t.Errorf("tick deadline in %v, want within 50ms", got)
	}
}

func TestLoopSetIntervalRestarts(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop("test", time.Hour, 0, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, nil)

	l.Start(context.Background())
	defer l.Stop()
	waitFor(t, "first tick", func() bool { return ticks.Load() == 1 })

	l.SetInterval(10 * time.Millisecond)
	if l.Interval() != 10*time.Millisecond {
		t.Errorf("Interval = %v", l.Interval())
	}
	waitFor(t, "ticks at new interval", func() bool { return ticks.Load() >= 4 })
}
