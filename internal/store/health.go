package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
	"github.com/smazurov/ptzdeck/internal/models"
)

// HealthState is the health shown to the operator.
type HealthState string

// Display states. Offline means the health request itself failed.
const (
	HealthUnknown  HealthState = "unknown"
	HealthOK       HealthState = "ok"
	HealthDegraded HealthState = "degraded"
	HealthOffline  HealthState = "offline"
)

// HealthSource fetches the backend health summary.
type HealthSource interface {
	Health(ctx context.Context) (models.Health, error)
}

// HealthView is the current health display.
type HealthView struct {
	State        HealthState `json:"state"`
	PreviewError int         `json:"preview_error"`
	ControlError int         `json:"control_error"`
	LastError    string      `json:"last_error,omitempty"`
	CheckedAt    time.Time   `json:"checked_at"`
}

// HealthMonitor polls the global backend health.
type HealthMonitor struct {
	source HealthSource
	bus    *events.Bus
	logger *slog.Logger

	mu   sync.RWMutex
	view HealthView
}

// NewHealthMonitor creates a monitor in the unknown state.
func NewHealthMonitor(source HealthSource, bus *events.Bus, logger *slog.Logger) *HealthMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthMonitor{
		source: source,
		bus:    bus,
		logger: logger,
		view:   HealthView{State: HealthUnknown},
	}
}

// Refresh fetches the health summary. It never fails: a transport or backend
// error switches the display to offline.
func (h *HealthMonitor) Refresh(ctx context.Context) {
	health, err := h.source.Health(ctx)

	view := HealthView{CheckedAt: time.Now()}
	if err != nil {
		view.State = HealthOffline
		view.LastError = err.Error()
		h.logger.Debug("Health check failed", "error", err)
	} else {
		view.State = HealthOK
		if health.Status != models.HealthOK {
			view.State = HealthDegraded
		}
		view.PreviewError = health.PreviewError
		view.ControlError = health.ControlError
	}
	metrics.SetBackendUp(err == nil)

	h.mu.Lock()
	prev := h.view.State
	h.view = view
	h.mu.Unlock()

	if prev != view.State {
		h.logger.Info("Backend health changed", "from", prev, "to", view.State)
	}
	h.bus.Publish(events.HealthUpdatedEvent{
		State:        string(view.State),
		PreviewError: view.PreviewError,
		ControlError: view.ControlError,
		Timestamp:    events.Now(),
	})
}

// View returns the current health display.
func (h *HealthMonitor) View() HealthView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.view
}
