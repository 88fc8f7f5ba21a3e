package store

import (
	"context"
	"errors"
	"testing"

	"github.com/smazurov/ptzdeck/internal/models"
)

type fakeHealth struct {
	health models.Health
	err    error
}

func (f *fakeHealth) Health(context.Context) (models.Health, error) {
	return f.health, f.err
}

func TestHealthMonitorStates(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeHealth
		want   HealthState
	}{
		{"ok", &fakeHealth{health: models.Health{Status: models.HealthOK}}, HealthOK},
		{"degraded", &fakeHealth{health: models.Health{Status: models.HealthDegraded, PreviewError: 1}}, HealthDegraded},
		{"network failure", &fakeHealth{err: errors.New("dial tcp: connection refused")}, HealthOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthMonitor(tt.source, nil, nil)
			if h.View().State != HealthUnknown {
				t.Fatalf("initial state = %s", h.View().State)
			}
			h.Refresh(context.Background())
			if got := h.View().State; got != tt.want {
				t.Errorf("state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHealthMonitorRecovers(t *testing.T) {
	src := &fakeHealth{err: errors.New("timeout")}
	h := NewHealthMonitor(src, nil, nil)

	h.Refresh(context.Background())
	if h.View().LastError == "" {
		t.Error("offline view should carry the error")
	}

	src.err = nil
	src.health = models.Health{Status: models.HealthOK}
	h.Refresh(context.Background())
	view := h.View()
	if view.State != HealthOK || view.LastError != "" {
		t.Errorf("view = %+v", view)
	}
}

type fakeLogs struct {
	entries []models.LogEntry
	err     error
	limit   int
}

func (f *fakeLogs) Logs(_ context.Context, limit int) ([]models.LogEntry, error) {
	f.limit = limit
	return f.entries, f.err
}

func TestLogFeedKeepsEntriesOnFailure(t *testing.T) {
	src := &fakeLogs{entries: []models.LogEntry{{Level: "INFO", Message: "started"}}}
	feed := NewLogFeed(src, 25, nil, nil)

	if err := feed.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if src.limit != 25 {
		t.Errorf("limit = %d, want 25", src.limit)
	}

	src.err = errors.New("502")
	if err := feed.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	entries, stale := feed.Entries()
	if !stale || len(entries) != 1 {
		t.Errorf("entries = %v, stale = %v", entries, stale)
	}

	src.err = nil
	feed.SetLimit(10)
	_ = feed.Refresh(context.Background())
	if _, stale := feed.Entries(); stale || src.limit != 10 {
		t.Errorf("stale = %v, limit = %d", stale, src.limit)
	}
}
