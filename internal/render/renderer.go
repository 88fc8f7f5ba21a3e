package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
	"github.com/smazurov/ptzdeck/internal/models"
)

// ErrNotMounted is returned when a camera has no player in the grid.
var ErrNotMounted = errors.New("camera is not in the preview grid")

// PreviewRestarter asks the backend to restart a camera's preview pipeline.
type PreviewRestarter interface {
	RestartPreview(ctx context.Context, id string) error
}

// Key identifies a player. A player survives reconciliation only while both
// the camera id and its stream URL are unchanged.
type Key struct {
	CameraID  string
	StreamURL string
}

// ChangeAction describes what reconciliation did to a slot.
type ChangeAction string

// Reconcile actions.
const (
	ActionMounted   ChangeAction = "mounted"
	ActionMoved     ChangeAction = "moved"
	ActionUnmounted ChangeAction = "unmounted"
	ActionEmptied   ChangeAction = "emptied"
)

// Change is one slot change made by Reconcile.
type Change struct {
	Slot     int          `json:"slot"`
	CameraID string       `json:"camera_id,omitempty"`
	Strategy Strategy     `json:"strategy,omitempty"`
	Action   ChangeAction `json:"action"`
}

// SlotView is the render state of one slot.
type SlotView struct {
	Index        int           `json:"index"`
	Empty        bool          `json:"empty"`
	Camera       models.Camera `json:"camera"`
	Strategy     Strategy      `json:"strategy,omitempty"`
	ControlBadge Badge         `json:"control_badge,omitempty"`
	PreviewBadge Badge         `json:"preview_badge,omitempty"`
	Player       PlayerStatus  `json:"player"`
}

// Config wires a Renderer.
type Config struct {
	Factory   Factory
	Restarter PreviewRestarter
	// Resolve turns backend stream_url values into absolute URLs.
	Resolve func(string) (string, error)
	Bus     *events.Bus
	Logger  *slog.Logger
}

type slot struct {
	cam    models.Camera
	key    Key
	player Player
	filled bool
}

// Renderer owns the preview grid.
type Renderer struct {
	factory   Factory
	restarter PreviewRestarter
	resolve   func(string) (string, error)
	bus       *events.Bus
	logger    *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	slots   [SlotCount]slot
	players map[Key]Player
}

// New creates an empty grid.
func New(cfg Config) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolve := cfg.Resolve
	if resolve == nil {
		resolve = func(s string) (string, error) { return s, nil }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Renderer{
		factory:   cfg.Factory,
		restarter: cfg.Restarter,
		resolve:   resolve,
		bus:       cfg.Bus,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		players:   make(map[Key]Player),
	}
}

// Reconcile maps the first SlotCount cameras onto the slots. Players whose
// key disappeared are torn down before any new player is mounted.
func (r *Renderer) Reconcile(cameras []models.Camera) []Change {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return nil
	}

	var desired [SlotCount]*models.Camera
	want := make(map[Key]int, SlotCount)
	for i := 0; i < SlotCount && i < len(cameras); i++ {
		cam := cameras[i]
		desired[i] = &cam
		want[Key{CameraID: cam.ID, StreamURL: cam.StreamURL}] = i
	}

	previousSlot := make(map[Key]int, SlotCount)
	for i, s := range r.slots {
		if s.filled {
			previousSlot[s.key] = i
		}
	}

	var changes []Change

	// Teardown first.
	for key, player := range r.players {
		if _, keep := want[key]; keep {
			continue
		}
		r.teardown(key, player)
		changes = append(changes, Change{
			Slot:     previousSlot[key],
			CameraID: key.CameraID,
			Strategy: player.Strategy(),
			Action:   ActionUnmounted,
		})
	}

	var next [SlotCount]slot
	for i, cam := range desired {
		if cam == nil {
			if r.slots[i].filled {
				changes = append(changes, Change{Slot: i, Action: ActionEmptied})
			}
			continue
		}

		key := Key{CameraID: cam.ID, StreamURL: cam.StreamURL}
		player, ok := r.players[key]
		switch {
		case !ok:
			player = r.mount(*cam)
			r.players[key] = player
			changes = append(changes, Change{Slot: i, CameraID: cam.ID, Strategy: player.Strategy(), Action: ActionMounted})
		case previousSlot[key] != i:
			changes = append(changes, Change{Slot: i, CameraID: cam.ID, Strategy: player.Strategy(), Action: ActionMoved})
		}
		next[i] = slot{cam: *cam, key: key, player: player, filled: true}
	}
	r.slots = next

	for _, c := range changes {
		r.logger.Debug("Slot changed", "slot", c.Slot, "camera_id", c.CameraID, "action", c.Action)
		r.bus.Publish(events.SlotChangedEvent{
			Slot:      c.Slot,
			CameraID:  c.CameraID,
			Strategy:  string(c.Strategy),
			Action:    string(c.Action),
			Timestamp: events.Now(),
		})
	}
	return changes
}

// mount creates and starts a player. Caller holds mu.
func (r *Renderer) mount(cam models.Camera) Player {
	src := cam.StreamURL
	if src != "" {
		resolved, err := r.resolve(src)
		if err != nil {
			r.logger.Warn("Cannot resolve stream url", "camera_id", cam.ID, "stream_url", src, "error", err)
		} else {
			src = resolved
		}
	}

	player := r.factory.NewPlayer(cam, src)
	if pl, ok := player.(Playable); ok {
		id := cam.ID
		pl.OnReady(func() { r.play(id, pl) })
	}
	if err := player.Mount(r.ctx); err != nil {
		r.logger.Warn("Player mount failed", "camera_id", cam.ID, "error", err)
	}
	metrics.PlayerMounted(string(player.Strategy()))
	r.logger.Info("Preview mounted", "camera_id", cam.ID, "strategy", player.Strategy())
	return player
}

// teardown closes a player and forgets it. Caller holds mu.
func (r *Renderer) teardown(key Key, player Player) {
	if err := player.Close(); err != nil {
		r.logger.Warn("Player close failed", "camera_id", key.CameraID, "error", err)
	}
	delete(r.players, key)
	metrics.PlayerTornDown(string(player.Strategy()))
	metrics.DeletePlayerMetrics(key.CameraID)
	r.logger.Info("Preview unmounted", "camera_id", key.CameraID, "strategy", player.Strategy())
}

// play starts a ready player; an autoplay rejection is expected and ignored.
func (r *Renderer) play(cameraID string, pl Playable) {
	err := pl.Play()
	switch {
	case err == nil:
	case errors.Is(err, ErrAutoplayBlocked):
		r.logger.Debug("Autoplay blocked", "camera_id", cameraID)
	default:
		r.logger.Warn("Play failed", "camera_id", cameraID, "error", err)
	}
}

// Resume starts a paused segmented preview on operator request.
func (r *Renderer) Resume(cameraID string) error {
	r.mu.Lock()
	player := r.playerFor(cameraID)
	r.mu.Unlock()

	if player == nil {
		return ErrNotMounted
	}
	if sp, ok := player.(*SegmentedPlayer); ok {
		sp.Resume()
	}
	return nil
}

// Restart asks the backend to restart the preview, then reloads the player:
// snapshot players take a fresh cache-busting token, segmented players are
// replaced because they never recover on their own.
func (r *Renderer) Restart(ctx context.Context, cameraID string) error {
	r.mu.Lock()
	player := r.playerFor(cameraID)
	r.mu.Unlock()

	if player == nil {
		return ErrNotMounted
	}
	if r.restarter != nil {
		if err := r.restarter.RestartPreview(ctx, cameraID); err != nil {
			return fmt.Errorf("restart preview %s: %w", cameraID, err)
		}
	}

	if rp, ok := player.(Restartable); ok {
		rp.Restart()
		return nil
	}
	if player.Strategy() != StrategySegmented {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.slots {
		if !s.filled || s.player != player {
			continue
		}
		r.teardown(s.key, player)
		fresh := r.mount(s.cam)
		r.players[s.key] = fresh
		r.slots[i].player = fresh
		r.bus.Publish(events.SlotChangedEvent{
			Slot:      i,
			CameraID:  cameraID,
			Strategy:  string(fresh.Strategy()),
			Action:    string(ActionMounted),
			Timestamp: events.Now(),
		})
	}
	return nil
}

// playerFor finds the mounted player of a camera. Caller holds mu.
func (r *Renderer) playerFor(cameraID string) Player {
	for _, s := range r.slots {
		if s.filled && s.key.CameraID == cameraID {
			return s.player
		}
	}
	return nil
}

// Slots returns the current grid.
func (r *Renderer) Slots() []SlotView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]SlotView, SlotCount)
	for i, s := range r.slots {
		views[i] = SlotView{Index: i, Empty: !s.filled}
		if !s.filled {
			continue
		}
		views[i].Camera = s.cam
		views[i].Strategy = s.player.Strategy()
		views[i].ControlBadge = ControlBadge(s.cam.ControlStatus)
		views[i].PreviewBadge = PreviewBadge(s.cam)
		views[i].Player = s.player.Status()
	}
	return views
}

// ActivePlayers returns the number of live players.
func (r *Renderer) ActivePlayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Close tears down every player. The renderer cannot be reused.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, player := range r.players {
		r.teardown(key, player)
	}
	r.slots = [SlotCount]slot{}
	r.cancel()
}
