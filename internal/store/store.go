// Package store caches the server-owned camera list and the backend health
// and log summaries. Only Refresh mutates a store; everything else reads.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
	"github.com/smazurov/ptzdeck/internal/models"
)

// ErrUnknownCamera is returned when an id is not in the current snapshot.
var ErrUnknownCamera = errors.New("unknown camera")

// CameraSource fetches the full camera list.
type CameraSource interface {
	ListCameras(ctx context.Context) ([]models.Camera, error)
}

// Snapshot is one applied camera list.
type Snapshot struct {
	Seq       uint64
	Cameras   []models.Camera
	UpdatedAt time.Time
}

// Listener is called synchronously, in order, after every applied snapshot.
// Listeners must not call Refresh.
type Listener func(Snapshot)

// Store holds the latest camera snapshot.
type Store struct {
	source CameraSource
	bus    *events.Bus
	logger *slog.Logger

	tickets atomic.Uint64

	// applyMu serializes apply+notify so listeners see snapshots in ticket order.
	applyMu sync.Mutex

	mu        sync.RWMutex
	snapshot  Snapshot
	index     map[string]int
	loaded    bool
	listeners map[int]Listener
	nextID    int
}

// New creates an empty store.
func New(source CameraSource, bus *events.Bus, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		source:    source,
		bus:       bus,
		logger:    logger,
		index:     make(map[string]int),
		listeners: make(map[int]Listener),
	}
}

// Refresh fetches the full list and replaces the snapshot. A response that
// was requested before the currently applied one is dropped.
func (s *Store) Refresh(ctx context.Context) error {
	ticket := s.tickets.Add(1)

	cameras, err := s.source.ListCameras(ctx)
	if err != nil {
		return err
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.Lock()
	if ticket <= s.snapshot.Seq {
		applied := s.snapshot.Seq
		s.mu.Unlock()
		metrics.StaleSnapshotDropped()
		s.logger.Debug("Dropped stale camera list", "ticket", ticket, "applied", applied)
		return nil
	}

	index := make(map[string]int, len(cameras))
	for i, cam := range cameras {
		index[cam.ID] = i
	}
	snap := Snapshot{Seq: ticket, Cameras: cameras, UpdatedAt: time.Now()}
	s.snapshot = snap
	s.index = index
	s.loaded = true
	listeners := s.orderedListeners()
	s.mu.Unlock()

	s.logger.Debug("Camera list applied", "seq", ticket, "count", len(cameras))

	for _, l := range listeners {
		l(copySnapshot(snap))
	}
	s.bus.Publish(events.CamerasUpdatedEvent{
		Seq:       snap.Seq,
		Cameras:   copyCameras(snap.Cameras),
		Timestamp: events.Now(),
	})
	return nil
}

// OnChange registers a listener and returns a function that removes it.
func (s *Store) OnChange(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// orderedListeners returns listeners in registration order. Caller holds mu.
func (s *Store) orderedListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Loaded reports whether at least one refresh has been applied.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snapshot)
}

// Cameras returns a copy of the current camera list.
func (s *Store) Cameras() []models.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCameras(s.snapshot.Cameras)
}

// Get returns the camera with id.
func (s *Store) Get(id string) (models.Camera, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Camera{}, false
	}
	return s.snapshot.Cameras[i], true
}

// Has reports whether id is in the current snapshot.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func copySnapshot(s Snapshot) Snapshot {
	s.Cameras = copyCameras(s.Cameras)
	return s
}

func copyCameras(in []models.Camera) []models.Camera {
	out := make([]models.Camera, len(in))
	copy(out, in)
	return out
}
