package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher is a data source refreshed by a poll loop.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// HealthRefresher refreshes the health display and never fails.
type HealthRefresher interface {
	Refresh(ctx context.Context)
}

// Config holds the StatusPoller cadence.
type Config struct {
	CameraInterval time.Duration
	LogInterval    time.Duration
}

// StatusPoller drives the camera/health loop and the log drawer loop.
type StatusPoller struct {
	cameras *Loop
	logs    *Loop
	logger  *slog.Logger

	mu         sync.Mutex
	ctx        context.Context
	started    bool
	drawerOpen bool
}

// New creates a StatusPoller. The log loop only runs while the drawer is open.
func New(cfg Config, cameras Refresher, health HealthRefresher, logs Refresher, logger *slog.Logger) *StatusPoller {
	if cfg.CameraInterval <= 0 {
		cfg.CameraInterval = 3 * time.Second
	}
	if cfg.LogInterval <= 0 {
		cfg.LogInterval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	cameraTick := func(ctx context.Context) error {
		err := cameras.Refresh(ctx)
		health.Refresh(ctx)
		return err
	}

	return &StatusPoller{
		cameras: NewLoop("cameras", cfg.CameraInterval, 0, cameraTick, logger),
		logs:    NewLoop("logs", cfg.LogInterval, 0, logs.Refresh, logger),
		logger:  logger,
	}
}

// Start begins polling. Calling Start twice is a no-op.
func (p *StatusPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	p.ctx = ctx
	p.cameras.Start(ctx)
	if p.drawerOpen {
		p.logs.Start(ctx)
	}
	p.logger.Info("Status polling started",
		"cameras_interval", p.cameras.Interval(),
		"logs_interval", p.logs.Interval())
}

// Stop halts both loops.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	p.cameras.Stop()
	p.logs.Stop()
}

// SetLogDrawerOpen starts or stops the log loop.
func (p *StatusPoller) SetLogDrawerOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawerOpen == open {
		return
	}
	p.drawerOpen = open
	if !p.started {
		return
	}
	if open {
		p.logs.Start(p.ctx)
	} else {
		p.logs.Stop()
	}
}

// LogDrawerOpen reports whether the log drawer is open.
func (p *StatusPoller) LogDrawerOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drawerOpen
}

// SetIntervals applies new intervals, restarting running loops.
func (p *StatusPoller) SetIntervals(cameras, logs time.Duration) {
	p.cameras.SetInterval(cameras)
	p.logs.SetInterval(logs)
}

// Intervals returns the current camera and log intervals.
func (p *StatusPoller) Intervals() (cameras, logs time.Duration) {
	return p.cameras.Interval(), p.logs.Interval()
}
