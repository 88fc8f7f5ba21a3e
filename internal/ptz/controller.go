package ptz

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
	"github.com/smazurov/ptzdeck/internal/models"
)

// Sender posts PTZ commands to the backend.
type Sender interface {
	SendPTZ(ctx context.Context, id string, req models.PTZRequest) error
}

// Config wires a Controller.
type Config struct {
	Sender Sender
	// Selected returns the selected camera id, or "" when none is selected.
	Selected func() string
	Slider   *Slider
	Timeout  time.Duration
	Bus      *events.Bus
	Logger   *slog.Logger
}

// Controller implements the press and hold protocol. Every command is sent on
// its own goroutine; nothing is queued, so a stop never waits on a move.
type Controller struct {
	sender   Sender
	selected func() string
	slider   *Slider
	timeout  time.Duration
	bus      *events.Bus
	logger   *slog.Logger

	mu   sync.Mutex
	held map[Control]string
	wg   sync.WaitGroup
}

// New creates a controller.
func New(cfg Config) *Controller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Slider == nil {
		cfg.Slider = NewSlider(DefaultSpeed, cfg.Bus)
	}
	if cfg.Selected == nil {
		cfg.Selected = func() string { return "" }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		sender:   cfg.Sender,
		selected: cfg.Selected,
		slider:   cfg.Slider,
		timeout:  cfg.Timeout,
		bus:      cfg.Bus,
		logger:   cfg.Logger,
		held:     make(map[Control]string),
	}
}

// Slider returns the speed slider.
func (c *Controller) Slider() *Slider {
	return c.slider
}

// Press starts a control. A repeated press re-sends with the current speed.
// Without a selected camera it does nothing.
func (c *Controller) Press(id string) error {
	control, cmd, err := Lookup(id)
	if err != nil {
		return err
	}
	camID := c.selected()
	if camID == "" {
		return nil
	}

	if control == Stop {
		c.mu.Lock()
		clear(c.held)
		c.mu.Unlock()
	} else {
		c.mu.Lock()
		c.held[control] = camID
		c.mu.Unlock()
	}

	c.send(camID, control, cmd.Request(c.slider.Value()))
	return nil
}

// Release ends a held control with exactly one stop. It reports whether a
// stop was sent.
func (c *Controller) Release(id string) (bool, error) {
	control, _, err := Lookup(id)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	camID, ok := c.held[control]
	delete(c.held, control)
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	c.send(camID, control, table[Stop].Request(0))
	return true, nil
}

// Stop sends stop to the selected camera and forgets held controls.
func (c *Controller) Stop() {
	if err := c.Press(string(Stop)); err != nil {
		c.logger.Error("Stop control missing from table", "error", err)
	}
}

// ReleaseAll releases every held control, for focus loss or selection change.
func (c *Controller) ReleaseAll() {
	c.mu.Lock()
	held := make(map[Control]string, len(c.held))
	for k, v := range c.held {
		held[k] = v
	}
	clear(c.held)
	c.mu.Unlock()

	stopped := make(map[string]bool)
	for control, camID := range held {
		if stopped[camID] {
			continue
		}
		stopped[camID] = true
		c.send(camID, control, table[Stop].Request(0))
	}
}

// Held returns the controls currently held.
func (c *Controller) Held() []Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Control, 0, len(c.held))
	for _, control := range order {
		if _, ok := c.held[control]; ok {
			out = append(out, control)
		}
	}
	return out
}

// Wait blocks until in-flight commands finish.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) send(camID string, control Control, req models.PTZRequest) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		err := c.sender.SendPTZ(ctx, camID, req)
		metrics.PTZRequest(string(req.Action), err)

		ev := events.PTZSentEvent{
			CameraID:  camID,
			Control:   string(control),
			Action:    string(req.Action),
			Timestamp: events.Now(),
		}
		if req.Speed != nil {
			ev.Speed = *req.Speed
		}
		if err != nil {
			ev.Error = err.Error()
			c.logger.Warn("PTZ command failed", "camera_id", camID, "control", control, "action", req.Action, "error", err)
		} else {
			c.logger.Debug("PTZ command sent", "camera_id", camID, "control", control, "action", req.Action, "speed", ev.Speed)
		}
		c.bus.Publish(ev)
	}()
}
