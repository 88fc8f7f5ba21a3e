package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

type countingHealth struct {
	calls atomic.Int32
}

func (c *countingHealth) Refresh(context.Context) {
	c.calls.Add(1)
}

func TestStatusPollerLogLoopFollowsDrawer(t *testing.T) {
	cameras := &countingRefresher{}
	health := &countingHealth{}
	logs := &countingRefresher{}

	p := New(Config{CameraInterval: time.Hour, LogInterval: 10 * time.Millisecond}, cameras, health, logs, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "camera tick", func() bool { return cameras.calls.Load() == 1 && health.calls.Load() == 1 })

	time.Sleep(40 * time.Millisecond)
	if logs.calls.Load() != 0 {
		t.Fatal("logs must not be polled while the drawer is closed")
	}

	p.SetLogDrawerOpen(true)
	if !p.LogDrawerOpen() {
		t.Fatal("drawer should report open")
	}
	waitFor(t, "log ticks", func() bool { return logs.calls.Load() >= 2 })

	p.SetLogDrawerOpen(false)
	stopped := logs.calls.Load()
	time.Sleep(40 * time.Millisecond)
	if logs.calls.Load() != stopped {
		t.Error("log loop kept running after the drawer closed")
	}
}

func TestStatusPollerHealthRunsWhenListFails(t *testing.T) {
	cameras := &countingRefresher{err: errors.New("502 bad gateway")}
	health := &countingHealth{}

	p := New(Config{CameraInterval: time.Hour}, cameras, health, &countingRefresher{}, nil)
	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, "health refresh", func() bool { return health.calls.Load() == 1 })
}

func TestStatusPollerDrawerOpenBeforeStart(t *testing.T) {
	logs := &countingRefresher{}
	p := New(Config{CameraInterval: time.Hour, LogInterval: time.Hour}, &countingRefresher{}, &countingHealth{}, logs, nil)

	p.SetLogDrawerOpen(true)
	time.Sleep(20 * time.Millisecond)
	if logs.calls.Load() != 0 {
		t.Fatal("nothing should poll before Start")
	}

	p.Start(context.Background())
	defer p.Stop()
	waitFor(t, "log tick after start", func() bool { return logs.calls.Load() == 1 })
}

func TestStatusPollerSetIntervals(t *testing.T) {
	p := New(Config{}, &countingRefresher{}, &countingHealth{}, &countingRefresher{}, nil)
	cams, logs := p.Intervals()
	if cams != 3*time.Second || logs != 2*time.Second {
		t.Errorf("defaults = %v, %v", cams, logs)
	}

	p.SetIntervals(time.Second, 0)
	cams, logs = p.Intervals()
	if cams != time.Second || logs != 2*time.Second {
		t.Errorf("after SetIntervals = %v, %v", cams, logs)
	}
}
