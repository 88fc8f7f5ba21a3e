package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/grafov/m3u8"

	"github.com/smazurov/ptzdeck/internal/events"
)

// ManifestFetcher downloads playlists.
type ManifestFetcher interface {
	FetchManifest(ctx context.Context, rawURL string) ([]byte, error)
}

// SegmentedConfig tunes the segmented player.
type SegmentedConfig struct {
	// Retries is the number of consecutive network failures tolerated
	// before the player gives up.
	Retries int
	// Poll is used when the playlist has no target duration.
	Poll time.Duration
	// MaxBandwidth caps variant selection from a master playlist; 0 means no cap.
	MaxBandwidth uint32
	Autoplay     bool
}

// SegmentedPlayer follows an HLS playlist. After too many network failures,
// or on a playlist it cannot parse, it shows a fatal overlay and stops
// polling but stays mounted. It never re-mounts itself.
type SegmentedPlayer struct {
	t       *tracker
	url     string
	fetcher ManifestFetcher
	cfg     SegmentedConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	onReady func()
}

// NewSegmentedPlayer creates a player for a playlist URL.
func NewSegmentedPlayer(cameraID, rawURL string, fetcher ManifestFetcher, cfg SegmentedConfig, bus *events.Bus, logger *slog.Logger) *SegmentedPlayer {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 2 * time.Second
	}
	return &SegmentedPlayer{
		t:       newTracker(cameraID, StrategySegmented, rawURL, bus, logger),
		url:     rawURL,
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// Strategy implements Player.
func (p *SegmentedPlayer) Strategy() Strategy { return StrategySegmented }

// OnReady registers a callback fired once, after the first media playlist parsed.
func (p *SegmentedPlayer) OnReady(fn func()) {
	p.mu.Lock()
	p.onReady = fn
	p.mu.Unlock()
}

// Play starts playback. Without autoplay the player stays paused and
// ErrAutoplayBlocked is returned.
func (p *SegmentedPlayer) Play() error {
	switch p.t.state() {
	case StateFatal, StateEnded, StateClosed:
		return fmt.Errorf("cannot play: player is %s", p.t.state())
	}
	if !p.cfg.Autoplay {
		p.t.set(StatePaused, "")
		return ErrAutoplayBlocked
	}
	p.t.set(StatePlaying, "")
	return nil
}

// Resume starts playback on operator request regardless of the autoplay policy.
func (p *SegmentedPlayer) Resume() {
	if p.t.state() != StatePaused {
		return
	}
	p.t.set(StatePlaying, "")
}

// Mount implements Player.
func (p *SegmentedPlayer) Mount(ctx context.Context) error {
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

// Status implements Player.
func (p *SegmentedPlayer) Status() PlayerStatus { return p.t.snapshot() }

// Close implements Player.
func (p *SegmentedPlayer) Close() error {
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

func (p *SegmentedPlayer) run(ctx context.Context) {
	defer close(p.done)

	p.t.set(StateConnecting, "")

	mediaURL := p.url
	failures := 0
	ready := false
	followedMaster := false
	var lastSeq uint64

	for {
		body, err := p.fetcher.FetchManifest(ctx, mediaURL)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failures++
			if failures > p.cfg.Retries {
				p.t.set(StateFatal, "Stream failed: "+err.Error())
				return
			}
			p.t.logger.Debug("Manifest fetch failed, retrying", "attempt", failures, "error", err)
			if !sleep(ctx, p.cfg.Poll) {
				return
			}
			continue
		}
		failures = 0

		playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
		if err != nil {
			p.t.set(StateFatal, "Unsupported stream: "+err.Error())
			return
		}

		if listType == m3u8.MASTER {
			if followedMaster {
				p.t.set(StateFatal, "Unsupported stream: variant is another master playlist")
				return
			}
			next, err := p.pickVariant(mediaURL, playlist.(*m3u8.MasterPlaylist))
			if err != nil {
				p.t.set(StateFatal, "Unsupported stream: "+err.Error())
				return
			}
			followedMaster = true
			mediaURL = next
			continue
		}

		media := playlist.(*m3u8.MediaPlaylist)
		segments := int(media.Count())
		if ready && media.SeqNo > lastSeq {
			p.t.addFrames(int(media.SeqNo - lastSeq))
		} else if !ready {
			p.t.addFrames(segments)
		}
		lastSeq = media.SeqNo
		p.t.update(func(s *PlayerStatus) {
			s.Sequence = media.SeqNo
			s.Segments = segments
		})

		if !ready {
			ready = true
			p.ready()
		}

		if media.Closed {
			p.t.set(StateEnded, "")
			return
		}

		wait := p.cfg.Poll
		if media.TargetDuration > 0 {
			wait = time.Duration(media.TargetDuration * float64(time.Second))
		}
		if !sleep(ctx, wait) {
			return
		}
	}
}

func (p *SegmentedPlayer) ready() {
	p.mu.Lock()
	fn := p.onReady
	p.mu.Unlock()
	if fn != nil {
		fn()
		return
	}
	if err := p.Play(); err != nil && !errors.Is(err, ErrAutoplayBlocked) {
		p.t.logger.Debug("Play failed", "error", err)
	}
}

// pickVariant returns the highest bandwidth variant within the cap, or the
// lowest variant when none fits.
func (p *SegmentedPlayer) pickVariant(base string, master *m3u8.MasterPlaylist) (string, error) {
	var best, lowest *m3u8.Variant
	for _, v := range master.Variants {
		if v == nil || v.URI == "" {
			continue
		}
		if lowest == nil || v.Bandwidth < lowest.Bandwidth {
			lowest = v
		}
		if p.cfg.MaxBandwidth > 0 && v.Bandwidth > p.cfg.MaxBandwidth {
			continue
		}
		if best == nil || v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	if best == nil {
		best = lowest
	}
	if best == nil {
		return "", errors.New("master playlist has no variants")
	}

	resolved, err := resolveRef(base, best.URI)
	if err != nil {
		return "", err
	}
	p.t.update(func(s *PlayerStatus) { s.Variant = resolved })
	p.t.logger.Debug("Variant selected", "uri", resolved, "bandwidth", best.Bandwidth)
	return resolved, nil
}

func resolveRef(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid playlist url: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid variant url: %w", err)
	}
	return b.ResolveReference(r).String(), nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
