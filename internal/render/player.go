package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
)

// ErrAutoplayBlocked is returned by Play when playback needs an operator action.
var ErrAutoplayBlocked = errors.New("autoplay blocked")

// PlayerState is the lifecycle state of a player.
type PlayerState string

// Player states.
const (
	StateIdle       PlayerState = "idle"
	StateOffline    PlayerState = "offline"
	StateConnecting PlayerState = "connecting"
	StatePlaying    PlayerState = "playing"
	StatePaused     PlayerState = "paused"
	StateError      PlayerState = "error"
	StateFatal      PlayerState = "fatal"
	StateEnded      PlayerState = "ended"
	StateClosed     PlayerState = "closed"
)

// PlayerStatus is a point-in-time view of a player.
type PlayerStatus struct {
	Strategy Strategy    `json:"strategy"`
	State    PlayerState `json:"state"`
	Overlay  string      `json:"overlay,omitempty"`
	URL      string      `json:"url,omitempty"`
	Frames   uint64      `json:"frames"`
	Token    uint64      `json:"token,omitempty"`
	Sequence uint64      `json:"media_sequence,omitempty"`
	Segments int         `json:"segments,omitempty"`
	Variant  string      `json:"variant,omitempty"`
}

// Player plays one camera preview in one slot.
type Player interface {
	Strategy() Strategy
	// Mount starts playback in the background and returns immediately.
	Mount(ctx context.Context) error
	Status() PlayerStatus
	// Close stops playback and waits for background work to end.
	Close() error
}

// Restartable players reload their source with a fresh cache-busting token.
type Restartable interface {
	Restart()
}

// Playable players start paused and need Play once their source is ready.
type Playable interface {
	Play() error
	OnReady(func())
}

// tracker holds a player's status and publishes state changes.
type tracker struct {
	cameraID string
	bus      *events.Bus
	logger   *slog.Logger

	mu     sync.RWMutex
	status PlayerStatus
}

func newTracker(cameraID string, strategy Strategy, url string, bus *events.Bus, logger *slog.Logger) *tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &tracker{
		cameraID: cameraID,
		bus:      bus,
		logger:   logger.With("camera_id", cameraID, "strategy", string(strategy)),
		status:   PlayerStatus{Strategy: strategy, State: StateIdle, URL: url},
	}
}

// set changes state and overlay, publishing when either changed.
func (t *tracker) set(state PlayerState, overlay string) {
	t.mu.Lock()
	if t.status.State == state && t.status.Overlay == overlay {
		t.mu.Unlock()
		return
	}
	prev := t.status.State
	t.status.State = state
	t.status.Overlay = overlay
	st := t.status
	t.mu.Unlock()

	if overlay != "" && prev != state && state != StatePaused {
		metrics.PlayerError(string(st.Strategy))
	}
	t.logger.Debug("Player state changed", "from", prev, "to", state, "overlay", overlay)
	t.bus.Publish(events.PlayerStatusEvent{
		CameraID:  t.cameraID,
		Strategy:  string(st.Strategy),
		State:     string(st.State),
		Overlay:   st.Overlay,
		Frames:    st.Frames,
		Timestamp: events.Now(),
	})
}

func (t *tracker) update(fn func(*PlayerStatus)) {
	t.mu.Lock()
	fn(&t.status)
	t.mu.Unlock()
}

func (t *tracker) addFrames(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.status.Frames += uint64(n)
	t.mu.Unlock()
	metrics.PlayerFrames(t.cameraID, n)
}

func (t *tracker) state() PlayerState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status.State
}

func (t *tracker) snapshot() PlayerStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// OfflinePlayer is the placeholder for cameras without a stream. It never
// touches the network.
type OfflinePlayer struct {
	t *tracker
}

// NewOfflinePlayer creates the offline placeholder.
func NewOfflinePlayer(cameraID string, bus *events.Bus, logger *slog.Logger) *OfflinePlayer {
	return &OfflinePlayer{t: newTracker(cameraID, StrategyOffline, "", bus, logger)}
}

// Strategy implements Player.
func (p *OfflinePlayer) Strategy() Strategy { return StrategyOffline }

// Mount implements Player.
func (p *OfflinePlayer) Mount(context.Context) error {
	p.t.set(StateOffline, "Offline / No Stream")
	return nil
}

// Status implements Player.
func (p *OfflinePlayer) Status() PlayerStatus { return p.t.snapshot() }

// Close implements Player.
func (p *OfflinePlayer) Close() error {
	p.t.set(StateClosed, "")
	return nil
}
