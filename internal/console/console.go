// Package console owns the operator console state: the camera store, the
// preview grid, the selection and everything that acts on the selected
// camera.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/logging"
	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/poller"
	"github.com/smazurov/ptzdeck/internal/presets"
	"github.com/smazurov/ptzdeck/internal/ptz"
	"github.com/smazurov/ptzdeck/internal/render"
	"github.com/smazurov/ptzdeck/internal/store"
)

// Backend is every backend call the console makes.
type Backend interface {
	store.CameraSource
	store.HealthSource
	store.LogSource
	ptz.Sender
	presets.Source
	editor.Backend
	render.PreviewRestarter
	render.MediaSource
}

// Config wires a Console.
type Config struct {
	Backend Backend
	// Resolve turns stream_url values into absolute URLs.
	Resolve func(string) (string, error)
	// Factory overrides the default player factory.
	Factory render.Factory
	// Confirm approves camera deletes; nil declines every delete.
	Confirm editor.Confirmer

	CameraPoll time.Duration
	LogPoll    time.Duration
	LogLimit   int

	PTZSpeed   float64
	PTZTimeout time.Duration

	PresetPoll     time.Duration
	PresetAttempts int

	Players render.PlayerOptions

	Bus *events.Bus
}

// ControlsView is the state of the PTZ pad.
type ControlsView struct {
	Enabled bool    `json:"enabled"`
	Opacity float64 `json:"opacity"`
	Label   string  `json:"label"`
	Speed   float64 `json:"speed"`
}

// Console is the application state object.
type Console struct {
	bus      *events.Bus
	logger   *slog.Logger
	store    *store.Store
	health   *store.HealthMonitor
	logs     *store.LogFeed
	poller   *poller.StatusPoller
	renderer *render.Renderer
	ptz      *ptz.Controller
	presets  *presets.Manager
	editor   *editor.Editor
	notices  *Notices

	mu       sync.RWMutex
	selected string

	unsubscribe func()
}

// New builds a console and all of its components.
func New(cfg Config) *Console {
	bus := cfg.Bus
	if bus == nil {
		bus = events.New()
	}

	c := &Console{
		bus:     bus,
		logger:  logging.GetLogger("console"),
		notices: NewNotices(bus),
	}

	c.store = store.New(cfg.Backend, bus, logging.GetLogger("store"))
	c.health = store.NewHealthMonitor(cfg.Backend, bus, logging.GetLogger("store"))
	c.logs = store.NewLogFeed(cfg.Backend, cfg.LogLimit, bus, logging.GetLogger("store"))
	c.poller = poller.New(poller.Config{CameraInterval: cfg.CameraPoll, LogInterval: cfg.LogPoll},
		c.store, c.health, c.logs, logging.GetLogger("poller"))

	factory := cfg.Factory
	if factory == nil {
		factory = render.NewFactory(cfg.Backend, cfg.Players, bus, logging.GetLogger("render"))
	}
	c.renderer = render.New(render.Config{
		Factory:   factory,
		Restarter: cfg.Backend,
		Resolve:   cfg.Resolve,
		Bus:       bus,
		Logger:    logging.GetLogger("render"),
	})

	c.ptz = ptz.New(ptz.Config{
		Sender:   cfg.Backend,
		Selected: c.Selected,
		Slider:   ptz.NewSlider(cfg.PTZSpeed, bus),
		Timeout:  cfg.PTZTimeout,
		Bus:      bus,
		Logger:   logging.GetLogger("ptz"),
	})

	c.presets = presets.New(presets.Config{
		Source:       cfg.Backend,
		Cameras:      c.store,
		PollInterval: cfg.PresetPoll,
		PollAttempts: cfg.PresetAttempts,
		Timeout:      cfg.PTZTimeout,
		Notifier:     c.notices,
		Bus:          bus,
		Logger:       logging.GetLogger("presets"),
	})

	c.editor = editor.New(editor.Config{
		Backend:  cfg.Backend,
		Cameras:  c.store,
		Confirm:  cfg.Confirm,
		Notifier: c.notices,
		OnDeleted: func(id string) {
			if c.Selected() == id {
				c.ClearSelection("deleted")
			}
		},
		Logger: logging.GetLogger("editor"),
	})

	c.unsubscribe = c.store.OnChange(c.onSnapshot)
	return c
}

// Start begins polling.
func (c *Console) Start(ctx context.Context) {
	c.poller.Start(ctx)
	c.logger.Info("Console started")
}

// Stop stops polling, releases held controls and tears down every player.
func (c *Console) Stop() {
	c.poller.Stop()
	c.unsubscribe()
	c.ptz.ReleaseAll()
	c.ptz.Wait()
	c.presets.Wait()
	c.renderer.Close()
	c.logger.Info("Console stopped")
}

// onSnapshot keeps the grid and the selection in step with the camera list.
// It runs inside store.Refresh and must not refresh the store.
func (c *Console) onSnapshot(snap store.Snapshot) {
	c.renderer.Reconcile(snap.Cameras)

	selected := c.Selected()
	if selected == "" {
		return
	}
	for _, cam := range snap.Cameras {
		if cam.ID == selected {
			return
		}
	}
	c.logger.Info("Selected camera disappeared", "camera_id", selected)
	c.ClearSelection("removed")
}

// Bus returns the console event bus.
func (c *Console) Bus() *events.Bus { return c.bus }

// Store returns the camera store.
func (c *Console) Store() *store.Store { return c.store }

// Health returns the health monitor.
func (c *Console) Health() *store.HealthMonitor { return c.health }

// Logs returns the backend log feed.
func (c *Console) Logs() *store.LogFeed { return c.logs }

// Poller returns the status poller.
func (c *Console) Poller() *poller.StatusPoller { return c.poller }

// Renderer returns the preview grid.
func (c *Console) Renderer() *render.Renderer { return c.renderer }

// PTZ returns the PTZ controller.
func (c *Console) PTZ() *ptz.Controller { return c.ptz }

// Presets returns the preset manager.
func (c *Console) Presets() *presets.Manager { return c.presets }

// Editor returns the camera editor.
func (c *Console) Editor() *editor.Editor { return c.editor }

// Notices returns the notice list.
func (c *Console) Notices() *Notices { return c.notices }

// Selected returns the selected camera id, or "".
func (c *Console) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// SelectedCamera returns the selected camera record.
func (c *Console) SelectedCamera() (models.Camera, bool) {
	id := c.Selected()
	if id == "" {
		return models.Camera{}, false
	}
	return c.store.Get(id)
}

// Select makes id the selected camera and loads its presets.
func (c *Console) Select(ctx context.Context, id string) error {
	if !c.store.Has(id) {
		return classify(fmt.Errorf("select %s: %w", id, store.ErrUnknownCamera))
	}
	prev := c.swapSelection(id)
	if prev != id {
		c.ptz.ReleaseAll()
	}
	c.publishSelection(id, prev, "operator")

	if err := c.presets.Select(ctx, id); err != nil {
		c.logger.Warn("Failed to load presets", "camera_id", id, "error", err)
	}
	return nil
}

// SelectSlot selects the camera shown in a grid slot.
func (c *Console) SelectSlot(ctx context.Context, slot int) error {
	slots := c.renderer.Slots()
	if slot < 0 || slot >= len(slots) || slots[slot].Empty {
		return NewConsoleError(ErrCodeNotFound, fmt.Sprintf("slot %d is empty", slot+1), nil)
	}
	return c.Select(ctx, slots[slot].Camera.ID)
}

// ClearSelection drops the selection, its presets and any held control.
func (c *Console) ClearSelection(reason string) {
	prev := c.swapSelection("")
	if prev == "" {
		return
	}
	c.ptz.ReleaseAll()
	if err := c.presets.Select(context.Background(), ""); err != nil {
		c.logger.Debug("Clearing presets failed", "error", err)
	}
	c.publishSelection("", prev, reason)
}

func (c *Console) swapSelection(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.selected
	c.selected = id
	return prev
}

func (c *Console) publishSelection(id, prev, reason string) {
	c.logger.Info("Selection changed", "camera_id", id, "previous", prev, "reason", reason)
	c.bus.Publish(events.SelectionChangedEvent{
		CameraID:  id,
		Previous:  prev,
		Reason:    reason,
		Timestamp: events.Now(),
	})
}

// Controls returns the PTZ pad state.
func (c *Console) Controls() ControlsView {
	view := ControlsView{Opacity: 0.5, Label: "Select a Camera", Speed: c.ptz.Slider().Value()}
	cam, ok := c.SelectedCamera()
	if !ok {
		return view
	}
	view.Enabled = true
	view.Opacity = 1.0
	view.Label = cam.Name
	if view.Label == "" {
		view.Label = cam.ID
	}
	return view
}

// SetSpeed moves the speed slider.
func (c *Console) SetSpeed(v float64) float64 {
	return c.ptz.Slider().Set(v)
}

// ToggleLogs opens or closes the log drawer and returns the new state.
func (c *Console) ToggleLogs() bool {
	open := !c.poller.LogDrawerOpen()
	c.poller.SetLogDrawerOpen(open)
	return open
}

// RestartPreview restarts the preview of a camera, the selected one when id is empty.
func (c *Console) RestartPreview(ctx context.Context, id string) error {
	if id == "" {
		id = c.Selected()
	}
	if id == "" {
		return classify(ErrNoSelection)
	}
	if err := c.renderer.Restart(ctx, id); err != nil {
		c.logger.Warn("Preview restart failed", "camera_id", id, "error", err)
		return classify(err)
	}
	return nil
}

// RefreshPresets forces a device preset refresh for the selected camera.
func (c *Console) RefreshPresets(ctx context.Context) ([]models.Preset, error) {
	id := c.Selected()
	if id == "" {
		return nil, classify(ErrNoSelection)
	}
	list, err := c.presets.Refresh(ctx, id)
	return list, classify(err)
}

// GotoPreset moves the selected camera to a preset.
func (c *Console) GotoPreset(presetID string) error {
	id := c.Selected()
	if id == "" {
		return classify(ErrNoSelection)
	}
	c.presets.Goto(id, presetID)
	return nil
}

// CreatePreset saves the current position of the selected camera.
func (c *Console) CreatePreset(ctx context.Context, name string) (models.Preset, error) {
	id := c.Selected()
	if id == "" {
		return models.Preset{}, classify(ErrNoSelection)
	}
	p, err := c.presets.Create(ctx, id, name)
	return p, classify(err)
}

// SaveCamera persists an editor form.
func (c *Console) SaveCamera(ctx context.Context, form editor.Form) (string, error) {
	id, err := c.editor.SaveForm(ctx, form)
	return id, classify(err)
}

// DeleteCamera deletes a camera through the editor's confirmation.
func (c *Console) DeleteCamera(ctx context.Context, id string) error {
	if !c.store.Has(id) {
		return classify(fmt.Errorf("delete %s: %w", id, store.ErrUnknownCamera))
	}
	return classify(c.editor.Delete(ctx, id))
}

// ScanNDI lists NDI sources for the editor.
func (c *Console) ScanNDI(ctx context.Context) (editor.ScanResult, error) {
	res, err := c.editor.ScanNDI(ctx)
	return res, classify(err)
}

// HandleInput resolves and executes one input event.
func (c *Console) HandleInput(ctx context.Context, ev InputEvent) (Intent, error) {
	intent := Resolve(ev)

	var err error
	switch intent.Kind {
	case IntentNone:
	case IntentPress:
		err = c.ptz.Press(string(intent.Control))
	case IntentRelease:
		_, err = c.ptz.Release(string(intent.Control))
	case IntentStop:
		c.ptz.Stop()
	case IntentSelectSlot:
		err = c.SelectSlot(ctx, intent.Slot)
	case IntentSpeedUp:
		c.ptz.Slider().Step(1)
	case IntentSpeedDown:
		c.ptz.Slider().Step(-1)
	case IntentToggleLogs:
		c.ToggleLogs()
	case IntentRestartPreview:
		err = c.RestartPreview(ctx, "")
	case IntentRefreshPresets:
		_, err = c.RefreshPresets(ctx)
	}
	return intent, classify(err)
}

// State is a full snapshot of the console for front ends.
type State struct {
	Cameras       []models.Camera   `json:"cameras"`
	Grid          []render.SlotView `json:"grid"`
	Selected      string            `json:"selected,omitempty"`
	Controls      ControlsView      `json:"controls"`
	Presets       []models.Preset   `json:"presets"`
	Health        store.HealthView  `json:"health"`
	LogDrawerOpen bool              `json:"log_drawer_open"`
	Logs          []models.LogEntry `json:"logs,omitempty"`
	LogsStale     bool              `json:"logs_stale,omitempty"`
	Notice        *Notice           `json:"notice,omitempty"`
}

// State returns the current console state.
func (c *Console) State() State {
	st := State{
		Cameras:       c.store.Cameras(),
		Grid:          c.renderer.Slots(),
		Selected:      c.Selected(),
		Controls:      c.Controls(),
		Presets:       c.presets.Presets(),
		Health:        c.health.View(),
		LogDrawerOpen: c.poller.LogDrawerOpen(),
	}
	if st.LogDrawerOpen {
		st.Logs, st.LogsStale = c.logs.Entries()
	}
	if n, ok := c.notices.Blocking(); ok {
		st.Notice = &n
	}
	return st
}
