package ptz

import (
	"math"
	"sync"

	"github.com/smazurov/ptzdeck/internal/events"
)

// Slider bounds.
const (
	DefaultSpeed = 0.5
	MinSpeed     = 0.1
	MaxSpeed     = 1.0
	SpeedStep    = 0.1
)

// Slider is the live PTZ speed. Commands read it at dispatch time.
type Slider struct {
	mu    sync.RWMutex
	value float64
	bus   *events.Bus
}

// NewSlider creates a slider; out of range initial values are clamped.
func NewSlider(initial float64, bus *events.Bus) *Slider {
	if initial == 0 {
		initial = DefaultSpeed
	}
	return &Slider{value: clamp(initial), bus: bus}
}

// Value returns the current speed.
func (s *Slider) Value() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set moves the slider and returns the stored value.
func (s *Slider) Set(v float64) float64 {
	v = clamp(v)
	s.mu.Lock()
	changed := s.value != v
	s.value = v
	s.mu.Unlock()

	if changed {
		s.bus.Publish(events.SpeedChangedEvent{Speed: v, Timestamp: events.Now()})
	}
	return v
}

// Step moves the slider by n steps, negative n slows down.
func (s *Slider) Step(n int) float64 {
	return s.Set(s.Value() + float64(n)*SpeedStep)
}

// clamp bounds v and snaps it to the step grid.
func clamp(v float64) float64 {
	v = math.Round(v/SpeedStep) * SpeedStep
	v = math.Round(v*10) / 10
	return math.Min(MaxSpeed, math.Max(MinSpeed, v))
}
