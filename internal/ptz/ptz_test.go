package ptz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

type sent struct {
	camID string
	req   models.PTZRequest
}

type recordingSender struct {
	mu    sync.Mutex
	calls []sent
	err   error
	block chan struct{}
}

func (s *recordingSender) SendPTZ(ctx context.Context, id string, req models.PTZRequest) error {
	s.mu.Lock()
	s.calls = append(s.calls, sent{id, req})
	block, err := s.block, s.err
	s.mu.Unlock()
	if block != nil && req.Action != models.PTZStop {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (s *recordingSender) list() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.calls...)
}

func newController(selected *string, sender Sender) *Controller {
	return New(Config{
		Sender:   sender,
		Selected: func() string { return *selected },
		Slider:   NewSlider(DefaultSpeed, events.New()),
		Timeout:  time.Second,
		Bus:      events.New(),
	})
}

func TestControlTable(t *testing.T) {
	tests := []struct {
		id     string
		action models.PTZAction
		pan    float64
		tilt   float64
		zoom   float64
	}{
		{"up", models.PTZMove, 0, 1, 0},
		{"down", models.PTZMove, 0, -1, 0},
		{"left", models.PTZMove, -1, 0, 0},
		{"right", models.PTZMove, 1, 0, 0},
		{"up-left", models.PTZMove, -1, 1, 0},
		{"down-right", models.PTZMove, 1, -1, 0},
		{"zoom-in", models.PTZZoom, 0, 0, 1},
		{"zoom-out", models.PTZZoom, 0, 0, -1},
		{"stop", models.PTZStop, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, cmd, err := Lookup(tt.id)
			if err != nil {
				t.Fatal(err)
			}
			if cmd.Action != tt.action || cmd.Pan != tt.pan || cmd.Tilt != tt.tilt || cmd.Zoom != tt.zoom {
				t.Errorf("command = %+v", cmd)
			}
		})
	}

	if _, _, err := Lookup("spin"); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("Lookup(spin) = %v", err)
	}
	if len(Controls()) != 11 {
		t.Errorf("Controls() has %d entries, want 11", len(Controls()))
	}
}

func TestStopRequestHasNoAxes(t *testing.T) {
	req := table[Stop].Request(0.7)
	if req.Pan != nil || req.Tilt != nil || req.Zoom != nil || req.Speed != nil {
		t.Errorf("stop request = %+v", req)
	}
	zoom := table[ZoomIn].Request(0.7)
	if zoom.Pan != nil || zoom.Zoom == nil || *zoom.Speed != 0.7 {
		t.Errorf("zoom request = %+v", zoom)
	}
}

func TestPressReleaseSendsOneStop(t *testing.T) {
	selected := "cam_1"
	sender := &recordingSender{}
	c := newController(&selected, sender)

	if err := c.Press("up"); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if ok, _ := c.Release("up"); !ok {
		t.Fatal("release of a held control must send stop")
	}
	c.Wait()
	if ok, _ := c.Release("up"); ok {
		t.Fatal("second release must not send stop")
	}
	c.Wait()

	calls := sender.list()
	if len(calls) != 2 {
		t.Fatalf("calls = %+v, want move then stop", calls)
	}
	if calls[0].req.Action != models.PTZMove || *calls[0].req.Speed != 0.5 {
		t.Errorf("first call = %+v", calls[0].req)
	}
	if calls[1].req.Action != models.PTZStop || calls[1].camID != "cam_1" {
		t.Errorf("second call = %+v", calls[1])
	}
}

func TestRepeatedPressReadsLiveSpeed(t *testing.T) {
	selected := "cam_1"
	sender := &recordingSender{}
	c := newController(&selected, sender)

	_ = c.Press("left")
	c.Wait()
	c.Slider().Step(2)
	_ = c.Press("left")
	c.Wait()

	calls := sender.list()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if *calls[1].req.Speed != 0.7 {
		t.Errorf("second press speed = %v, want 0.7", *calls[1].req.Speed)
	}
}

func TestNoSelectionIsNoop(t *testing.T) {
	selected := ""
	sender := &recordingSender{}
	c := newController(&selected, sender)

	_ = c.Press("up")
	_, _ = c.Release("up")
	c.Stop()
	c.Wait()

	if n := len(sender.list()); n != 0 {
		t.Errorf("sent %d commands without a selection", n)
	}
}

func TestStopDoesNotWaitOnMove(t *testing.T) {
	selected := "cam_1"
	sender := &recordingSender{block: make(chan struct{})}
	c := newController(&selected, sender)

	_ = c.Press("right")
	done := make(chan struct{})
	go func() {
		_, _ = c.Release("right")
		for {
			for _, call := range sender.list() {
				if call.req.Action == models.PTZStop {
					close(done)
					return
				}
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop was queued behind an in-flight move")
	}
	close(sender.block)
	c.Wait()
}

func TestReleaseTargetsCameraThatWasHeld(t *testing.T) {
	selected := "cam_1"
	sender := &recordingSender{}
	c := newController(&selected, sender)

	_ = c.Press("zoom-in")
	selected = "cam_2"
	c.ReleaseAll()
	c.Wait()

	calls := sender.list()
	last := calls[len(calls)-1]
	if last.req.Action != models.PTZStop || last.camID != "cam_1" {
		t.Errorf("stop went to %+v, want cam_1", last)
	}
	if len(c.Held()) != 0 {
		t.Error("ReleaseAll must forget held controls")
	}
}

func TestFailuresArePublishedNotReturned(t *testing.T) {
	selected := "cam_1"
	sender := &recordingSender{err: errors.New("backend down")}
	bus := events.New()
	c := New(Config{Sender: sender, Selected: func() string { return selected }, Bus: bus})

	got := make(chan events.PTZSentEvent, 1)
	defer bus.Subscribe(func(e events.PTZSentEvent) { got <- e })()

	if err := c.Press("down"); err != nil {
		t.Fatalf("Press surfaced %v", err)
	}
	select {
	case e := <-got:
		if e.Error == "" || e.Control != "down" {
			t.Errorf("event = %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no PTZSentEvent")
	}
	c.Wait()
}

func TestSliderClampsAndSteps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.5, 0.5},
		{0.04, 0.1},
		{-3, 0.1},
		{1.7, 1.0},
		{0.66, 0.7},
	}
	s := NewSlider(DefaultSpeed, nil)
	for _, tt := range tests {
		if got := s.Set(tt.in); got != tt.want {
			t.Errorf("Set(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	s.Set(0.9)
	if got := s.Step(1); got != 1.0 {
		t.Errorf("Step(1) from 0.9 = %v", got)
	}
	if got := s.Step(1); got != 1.0 {
		t.Errorf("Step past max = %v", got)
	}
	s.Set(0.2)
	if got := s.Step(-3); got != 0.1 {
		t.Errorf("Step below min = %v", got)
	}
	if NewSlider(0, nil).Value() != DefaultSpeed {
		t.Error("zero initial speed must default to 0.5")
	}
}
