// Package presets manages the preset list of the selected camera.
package presets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

var (
	// ErrPresetNotVisible is returned when a saved preset never showed up in the list.
	ErrPresetNotVisible = errors.New("preset saved but not visible yet")
	// ErrEmptyName is returned for a blank preset name.
	ErrEmptyName = errors.New("preset name is required")
)

// Source is the backend surface the manager needs.
type Source interface {
	ListPresets(ctx context.Context, id string) ([]models.Preset, error)
	RefreshPresets(ctx context.Context, id string) error
	GotoPreset(ctx context.Context, id, presetID string) error
	SetPreset(ctx context.Context, id, name string) error
}

// Cameras is the camera list every preset action ends by refreshing.
type Cameras interface {
	Refresh(ctx context.Context) error
}

// Notifier shows operator notices.
type Notifier interface {
	Notify(level, message string, blocking bool)
}

// Config wires a Manager.
type Config struct {
	Source       Source
	Cameras      Cameras
	PollInterval time.Duration
	PollAttempts int
	// Timeout bounds fire and forget goto requests.
	Timeout  time.Duration
	Notifier Notifier
	Bus      *events.Bus
	Logger   *slog.Logger
}

// Manager holds the presets of the selected camera. Responses that arrive
// after the selection moved on are discarded.
type Manager struct {
	source   Source
	cameras  Cameras
	interval time.Duration
	attempts int
	timeout  time.Duration
	notifier Notifier
	bus      *events.Bus
	logger   *slog.Logger

	mu       sync.RWMutex
	cameraID string
	gen      uint64
	presets  []models.Preset

	wg sync.WaitGroup
}

// New creates a manager.
func New(cfg Config) *Manager {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		source:   cfg.Source,
		cameras:  cfg.Cameras,
		interval: cfg.PollInterval,
		attempts: cfg.PollAttempts,
		timeout:  cfg.Timeout,
		notifier: cfg.Notifier,
		bus:      cfg.Bus,
		logger:   cfg.Logger,
		presets:  []models.Preset{},
	}
}

// Select switches to camID, drops the current list and loads the new one.
// An empty camID only clears.
func (m *Manager) Select(ctx context.Context, camID string) error {
	m.mu.Lock()
	m.cameraID = camID
	m.gen++
	m.presets = []models.Preset{}
	m.mu.Unlock()

	m.publish(camID, []models.Preset{})
	if camID == "" {
		return nil
	}
	_, err := m.List(ctx, camID)
	return err
}

// Selected returns the camera whose presets are held.
func (m *Manager) Selected() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cameraID
}

// Presets returns the held list.
func (m *Manager) Presets() []models.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Preset(nil), m.presets...)
}

// List fetches the presets of camID without forcing a device refresh.
func (m *Manager) List(ctx context.Context, camID string) ([]models.Preset, error) {
	gen := m.generation()
	presets, err := m.source.ListPresets(ctx, camID)
	if err != nil {
		m.logger.Warn("Failed to list presets", "camera_id", camID, "error", err)
		return nil, fmt.Errorf("list presets: %w", err)
	}
	m.apply(camID, gen, presets)
	return presets, nil
}

// Refresh asks the backend to re-read the device presets, then lists them.
func (m *Manager) Refresh(ctx context.Context, camID string) ([]models.Preset, error) {
	defer m.refreshCameras(ctx)
	gen := m.generation()
	if err := m.source.RefreshPresets(ctx, camID); err != nil {
		m.logger.Warn("Failed to refresh presets", "camera_id", camID, "error", err)
		return nil, fmt.Errorf("refresh presets: %w", err)
	}
	presets, err := m.source.ListPresets(ctx, camID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	m.apply(camID, gen, presets)
	return presets, nil
}

// Goto moves the camera to a preset in the background.
func (m *Manager) Goto(camID, presetID string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		defer m.refreshCameras(ctx)
		if err := m.source.GotoPreset(ctx, camID, presetID); err != nil {
			m.logger.Warn("Goto preset failed", "camera_id", camID, "preset", presetID, "error", err)
			return
		}
		m.logger.Debug("Goto preset sent", "camera_id", camID, "preset", presetID)
	}()
}

// Create saves the current position as name and polls until the preset is
// listed.
func (m *Manager) Create(ctx context.Context, camID, name string) (models.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Preset{}, ErrEmptyName
	}
	defer m.refreshCameras(context.WithoutCancel(ctx))
	if err := m.source.SetPreset(ctx, camID, name); err != nil {
		m.notify("error", fmt.Sprintf("Failed to save preset %q: %v", name, err))
		return models.Preset{}, fmt.Errorf("set preset: %w", err)
	}

	for attempt := 1; attempt <= m.attempts; attempt++ {
		timer := time.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.Preset{}, ctx.Err()
		case <-timer.C:
		}

		gen := m.generation()
		presets, err := m.source.ListPresets(ctx, camID)
		if err != nil {
			m.logger.Debug("Preset poll failed", "camera_id", camID, "attempt", attempt, "error", err)
			continue
		}
		m.apply(camID, gen, presets)
		for _, p := range presets {
			if p.Name == name {
				m.logger.Info("Preset created", "camera_id", camID, "preset", p.ID, "attempts", attempt)
				return p, nil
			}
		}
	}

	m.notify("warn", fmt.Sprintf("Preset %q was saved but is not listed yet. Refresh to check again.", name))
	return models.Preset{}, ErrPresetNotVisible
}

// Wait blocks until background gotos finish.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// refreshCameras reloads the camera list so status badges reflect the action.
func (m *Manager) refreshCameras(ctx context.Context) {
	if m.cameras == nil {
		return
	}
	if err := m.cameras.Refresh(ctx); err != nil {
		m.logger.Debug("Camera refresh after preset action failed", "error", err)
	}
}

func (m *Manager) generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// apply stores presets when camID is still selected and no reselect happened
// since the request started.
func (m *Manager) apply(camID string, gen uint64, presets []models.Preset) {
	m.mu.Lock()
	if m.cameraID != camID || m.gen != gen {
		m.mu.Unlock()
		m.logger.Debug("Discarding presets for deselected camera", "camera_id", camID)
		return
	}
	m.presets = append([]models.Preset{}, presets...)
	m.mu.Unlock()

	m.publish(camID, presets)
}

func (m *Manager) publish(camID string, presets []models.Preset) {
	m.bus.Publish(events.PresetsUpdatedEvent{
		CameraID:  camID,
		Presets:   presets,
		Timestamp: events.Now(),
	})
}

func (m *Manager) notify(level, message string) {
	if m.notifier != nil {
		m.notifier.Notify(level, message, false)
	}
}
