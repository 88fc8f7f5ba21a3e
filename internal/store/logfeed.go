package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

// LogSource fetches recent backend log entries.
type LogSource interface {
	Logs(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// LogFeed keeps the latest page of backend logs for the log drawer.
type LogFeed struct {
	source LogSource
	limit  int
	bus    *events.Bus
	logger *slog.Logger

	mu        sync.RWMutex
	entries   []models.LogEntry
	stale     bool
	fetchedAt time.Time
}

// NewLogFeed creates a feed that fetches limit entries per refresh.
func NewLogFeed(source LogSource, limit int, bus *events.Bus, logger *slog.Logger) *LogFeed {
	if limit <= 0 {
		limit = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogFeed{source: source, limit: limit, bus: bus, logger: logger}
}

// Refresh fetches the newest entries. On failure the previous entries are
// kept and marked stale; the error is returned for metrics only.
func (f *LogFeed) Refresh(ctx context.Context) error {
	f.mu.RLock()
	limit := f.limit
	f.mu.RUnlock()

	entries, err := f.source.Logs(ctx, limit)

	f.mu.Lock()
	if err != nil {
		f.stale = true
	} else {
		f.entries = entries
		f.stale = false
		f.fetchedAt = time.Now()
	}
	out := append([]models.LogEntry(nil), f.entries...)
	stale := f.stale
	f.mu.Unlock()

	if err != nil {
		f.logger.Debug("Log fetch failed", "error", err)
	}
	f.bus.Publish(events.BackendLogsEvent{Entries: out, Stale: stale, Timestamp: events.Now()})
	return err
}

// Entries returns the latest entries and whether they are stale.
func (f *LogFeed) Entries() ([]models.LogEntry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.LogEntry(nil), f.entries...), f.stale
}

// SetLimit changes the page size used by the next refresh.
func (f *LogFeed) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	f.mu.Lock()
	f.limit = limit
	f.mu.Unlock()
}
