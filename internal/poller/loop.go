// Package poller runs the periodic refresh loops of the console.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/metrics"
)

// TickFunc is one unit of polling work.
type TickFunc func(ctx context.Context) error

// Loop runs a TickFunc immediately and then on every interval. Ticks never
// overlap; ticks missed while one is in flight are dropped.
type Loop struct {
	name   string
	tick   TickFunc
	logger *slog.Logger

	mu       sync.Mutex
	interval time.Duration
	timeout  time.Duration
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewLoop creates a stopped loop. A zero timeout uses the interval.
func NewLoop(name string, interval, timeout time.Duration, tick TickFunc, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		name:     name,
		tick:     tick,
		logger:   logger.With("loop", name),
		interval: interval,
		timeout:  timeout,
	}
}

// Name returns the loop name.
func (l *Loop) Name() string {
	return l.name
}

// Start launches the loop. Starting a running loop is a no-op and returns false.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return false
	}
	l.startLocked(ctx)
	return true
}

func (l *Loop) startLocked(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.parent = ctx
	l.cancel = cancel
	l.done = done
	go l.run(runCtx, l.interval, l.tickTimeoutLocked(), done)
	l.logger.Debug("Poll loop started", "interval", l.interval)
}

// Stop cancels the loop and waits for an in-flight tick to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Loop) stopLocked() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
	l.logger.Debug("Poll loop stopped")
}

// Running reports whether the loop is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Interval returns the current interval.
func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// SetInterval changes the interval, restarting the loop if it is running.
func (l *Loop) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if d == l.interval {
		return
	}
	l.interval = d
	if l.cancel != nil {
		parent := l.parent
		l.stopLocked()
		l.startLocked(parent)
	}
}

func (l *Loop) tickTimeoutLocked() time.Duration {
	if l.timeout > 0 {
		return l.timeout
	}
	return l.interval
}

func (l *Loop) run(ctx context.Context, interval, timeout time.Duration, done chan struct{}) {
	defer close(done)

	l.runTick(ctx, timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.runTick(ctx, timeout)
			// Drop a tick that fired while this one was in flight.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (l *Loop) runTick(ctx context.Context, timeout time.Duration) {
	if ctx.Err() != nil {
		return
	}
	tickCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := l.tick(tickCtx)
	metrics.ObservePoll(l.name, time.Since(start), err)
	if err != nil && ctx.Err() == nil {
		l.logger.Debug("Poll tick failed", "error", err)
	}
}
