package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mattn/go-mjpeg"

	"github.com/smazurov/ptzdeck/internal/events"
)

// StreamOpener opens a long-lived HTTP stream.
type StreamOpener interface {
	OpenStream(ctx context.Context, rawURL string) (*http.Response, error)
}

// SnapshotPlayer consumes a multipart MJPEG stream. Errors show an overlay
// while the player stays mounted and reconnects after a delay.
type SnapshotPlayer struct {
	t      *tracker
	url    string
	opener StreamOpener
	retry  time.Duration

	mu         sync.Mutex
	token      uint64
	connCancel context.CancelFunc
	cancel     context.CancelFunc
	done       chan struct{}
	kick       chan struct{}
}

// NewSnapshotPlayer creates a player for an MJPEG URL.
func NewSnapshotPlayer(cameraID, rawURL string, opener StreamOpener, retry time.Duration, bus *events.Bus, logger *slog.Logger) *SnapshotPlayer {
	if retry <= 0 {
		retry = 2 * time.Second
	}
	return &SnapshotPlayer{
		t:      newTracker(cameraID, StrategySnapshot, rawURL, bus, logger),
		url:    rawURL,
		opener: opener,
		retry:  retry,
		kick:   make(chan struct{}, 1),
	}
}

// Strategy implements Player.
func (p *SnapshotPlayer) Strategy() Strategy { return StrategySnapshot }

// Mount implements Player.
func (p *SnapshotPlayer) Mount(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx)
	return nil
}

// Restart reconnects immediately with a new cache-busting token.
func (p *SnapshotPlayer) Restart() {
	token := nextRestartToken()

	p.mu.Lock()
	p.token = token
	connCancel := p.connCancel
	p.mu.Unlock()

	p.t.update(func(s *PlayerStatus) {
		s.Token = token
		s.URL = withToken(p.url, token)
	})
	p.t.logger.Info("Preview restarted", "token", token)

	if connCancel != nil {
		connCancel()
	}
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Token returns the current cache-busting token, 0 before the first restart.
func (p *SnapshotPlayer) Token() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// Status implements Player.
func (p *SnapshotPlayer) Status() PlayerStatus { return p.t.snapshot() }

// Close implements Player.
func (p *SnapshotPlayer) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	p.t.set(StateClosed, "")
	return nil
}

func (p *SnapshotPlayer) run(ctx context.Context) {
	defer close(p.done)

	for ctx.Err() == nil {
		err := p.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.t.set(StateError, "Preview unavailable: "+err.Error())
		}

		timer := time.NewTimer(p.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// stream runs one connection until it fails or is cancelled.
func (p *SnapshotPlayer) stream(ctx context.Context) error {
	connCtx, connCancel := context.WithCancel(ctx)
	defer connCancel()

	p.mu.Lock()
	p.connCancel = connCancel
	src := withToken(p.url, p.token)
	p.mu.Unlock()

	if p.t.state() != StateError {
		p.t.set(StateConnecting, "")
	}

	resp, err := p.opener.OpenStream(connCtx, src)
	if err != nil {
		if connCtx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	dec, err := mjpeg.NewDecoderFromResponse(resp)
	if err != nil {
		return fmt.Errorf("not an MJPEG stream: %w", err)
	}

	for {
		frame, err := dec.DecodeRaw()
		if err != nil {
			if connCtx.Err() != nil {
				// Restart or unmount; not a stream failure.
				return nil
			}
			return fmt.Errorf("decode: %w", err)
		}
		if len(frame) == 0 {
			continue
		}
		p.t.addFrames(1)
		if p.t.state() != StatePlaying {
			p.t.set(StatePlaying, "")
		}
	}
}
