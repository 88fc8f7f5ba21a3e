package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

// journal records mount and close calls across all fake players in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakePlayer struct {
	j        *journal
	id       string
	strategy Strategy

	mu       sync.Mutex
	live     bool
	restarts int
}

func (p *fakePlayer) Strategy() Strategy { return p.strategy }

func (p *fakePlayer) Mount(context.Context) error {
	p.mu.Lock()
	p.live = true
	p.mu.Unlock()
	p.j.add("mount " + p.id)
	return nil
}

func (p *fakePlayer) Status() PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := StateClosed
	if p.live {
		state = StatePlaying
	}
	return PlayerStatus{Strategy: p.strategy, State: state}
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	p.live = false
	p.mu.Unlock()
	p.j.add("close " + p.id)
	return nil
}

// restartablePlayer is a fake snapshot player.
type restartablePlayer struct {
	*fakePlayer
}

func (p restartablePlayer) Restart() {
	p.mu.Lock()
	p.restarts++
	p.mu.Unlock()
}

type fakeFactory struct {
	j *journal

	mu      sync.Mutex
	created []*fakePlayer
}

func (f *fakeFactory) NewPlayer(cam models.Camera, streamURL string) Player {
	fp := &fakePlayer{j: f.j, id: cam.ID, strategy: Classify(streamURL)}
	f.mu.Lock()
	f.created = append(f.created, fp)
	f.mu.Unlock()
	if fp.strategy == StrategySnapshot {
		return restartablePlayer{fp}
	}
	return fp
}

func (f *fakeFactory) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.created {
		p.mu.Lock()
		if p.live {
			n++
		}
		p.mu.Unlock()
	}
	return n
}

type fakeRestarter struct {
	err   error
	calls []string
}

func (r *fakeRestarter) RestartPreview(_ context.Context, id string) error {
	r.calls = append(r.calls, id)
	return r.err
}

func cam(id, url string) models.Camera {
	return models.Camera{ID: id, Name: "Camera " + id, StreamURL: url, ControlStatus: models.ControlOK, PreviewStatus: models.PreviewOK}
}

func newTestRenderer(t *testing.T) (*Renderer, *fakeFactory, *journal, *fakeRestarter) {
	t.Helper()
	j := &journal{}
	factory := &fakeFactory{j: j}
	restarter := &fakeRestarter{}
	r := New(Config{Factory: factory, Restarter: restarter, Bus: events.New()})
	t.Cleanup(r.Close)
	return r, factory, j, restarter
}

func TestReconcileFillsAtMostFourSlots(t *testing.T) {
	r, factory, _, _ := newTestRenderer(t)

	var cameras []models.Camera
	for i := range 6 {
		cameras = append(cameras, cam(fmt.Sprintf("cam_%d", i), "/mjpeg"))
	}
	r.Reconcile(cameras)

	if got := factory.live(); got != SlotCount {
		t.Errorf("live players = %d, want %d", got, SlotCount)
	}
	slots := r.Slots()
	for i, s := range slots {
		if s.Empty || s.Camera.ID != fmt.Sprintf("cam_%d", i) {
			t.Errorf("slot %d = %+v", i, s)
		}
		if s.ControlBadge != BadgeGreen || s.PreviewBadge != BadgeGreen {
			t.Errorf("slot %d badges = %s/%s", i, s.ControlBadge, s.PreviewBadge)
		}
	}
}

func TestReconcileTearsDownBeforeMount(t *testing.T) {
	r, factory, j, _ := newTestRenderer(t)

	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg"), cam("b", "/b/mjpeg")})
	r.Reconcile([]models.Camera{cam("c", "/c/mjpeg"), cam("b", "/b/mjpeg")})

	got := j.list()
	closeA := slices.Index(got, "close a")
	mountC := slices.Index(got, "mount c")
	if closeA < 0 || mountC < 0 || closeA > mountC {
		t.Fatalf("teardown must precede mount, journal %v", got)
	}
	if factory.live() != 2 {
		t.Errorf("live players = %d, want 2", factory.live())
	}
}

func TestReconcileKeepsUnchangedKey(t *testing.T) {
	r, factory, j, _ := newTestRenderer(t)

	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg"), cam("b", "/b/mjpeg")})
	changes := r.Reconcile([]models.Camera{cam("b", "/b/mjpeg")})

	if slices.Contains(j.list(), "close b") {
		t.Error("camera b kept its key and must keep its player")
	}
	if len(factory.created) != 2 {
		t.Errorf("players created = %d, want 2", len(factory.created))
	}

	var moved bool
	for _, c := range changes {
		if c.CameraID == "b" && c.Action == ActionMoved && c.Slot == 0 {
			moved = true
		}
	}
	if !moved {
		t.Errorf("expected b moved to slot 0, got %+v", changes)
	}
	if slots := r.Slots(); !slots[1].Empty {
		t.Error("slot 1 must be empty")
	}
}

func TestReconcileRemountsOnURLChange(t *testing.T) {
	r, _, j, _ := newTestRenderer(t)

	r.Reconcile([]models.Camera{cam("a", "")})
	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg")})

	want := []string{"mount a", "close a", "mount a"}
	if got := j.list(); !slices.Equal(got, want) {
		t.Errorf("journal = %v, want %v", got, want)
	}
	if s := r.Slots()[0]; s.Strategy != StrategySnapshot {
		t.Errorf("strategy = %s, want snapshot", s.Strategy)
	}
}

func TestReconcilePublishesSlotChanges(t *testing.T) {
	r, _, _, _ := newTestRenderer(t)
	bus := events.New()
	r.bus = bus

	got := make(chan events.SlotChangedEvent, 8)
	defer bus.Subscribe(func(e events.SlotChangedEvent) { got <- e })()

	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg")})

	var e events.SlotChangedEvent
	select {
	case e = <-got:
	case <-time.After(time.Second):
		t.Fatal("no slot change published")
	}
	if e.Slot != 0 || e.CameraID != "a" || e.Action != string(ActionMounted) {
		t.Errorf("event = %+v", e)
	}
}

func TestRestartSnapshotBumpsAfterBackend(t *testing.T) {
	r, factory, _, restarter := newTestRenderer(t)
	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg")})

	if err := r.Restart(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(restarter.calls, []string{"a"}) {
		t.Errorf("backend restarts = %v", restarter.calls)
	}
	if factory.created[0].restarts != 1 {
		t.Errorf("player restarts = %d, want 1", factory.created[0].restarts)
	}

	restarter.err = errors.New("boom")
	if err := r.Restart(context.Background(), "a"); err == nil {
		t.Fatal("expected backend error")
	}
	if factory.created[0].restarts != 1 {
		t.Error("player must not reload when the backend restart failed")
	}
}

func TestRestartSegmentedRemounts(t *testing.T) {
	r, factory, j, _ := newTestRenderer(t)
	r.Reconcile([]models.Camera{cam("a", "/hls/a.m3u8")})

	if err := r.Restart(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	want := []string{"mount a", "close a", "mount a"}
	if got := j.list(); !slices.Equal(got, want) {
		t.Errorf("journal = %v, want %v", got, want)
	}
	if factory.live() != 1 || r.ActivePlayers() != 1 {
		t.Errorf("live = %d active = %d, want 1", factory.live(), r.ActivePlayers())
	}
}

func TestRestartUnknownCamera(t *testing.T) {
	r, _, _, _ := newTestRenderer(t)
	if err := r.Restart(context.Background(), "ghost"); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Restart = %v, want ErrNotMounted", err)
	}
	if err := r.Resume("ghost"); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Resume = %v, want ErrNotMounted", err)
	}
}

func TestCloseTearsDownEverything(t *testing.T) {
	r, factory, _, _ := newTestRenderer(t)
	r.Reconcile([]models.Camera{cam("a", "/a/mjpeg"), cam("b", "")})
	r.Close()

	if factory.live() != 0 {
		t.Errorf("live players after Close = %d", factory.live())
	}
	if changes := r.Reconcile([]models.Camera{cam("c", "")}); changes != nil {
		t.Error("closed renderer must ignore reconcile")
	}
}
