package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/ptzdeck/internal/api/models"
	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/logging"
)

// registerLogRoutes registers the backend log drawer and local log stream endpoints.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Backend Logs",
		Description: "Latest backend log entries fetched by the log drawer",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LogsResponse, error) {
		entries, stale := s.console.Logs().Entries()
		return &models.LogsResponse{Body: models.LogsData{
			Open:    s.console.Poller().LogDrawerOpen(),
			Stale:   stale,
			Entries: entries,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-log-drawer",
		Method:      http.MethodPut,
		Path:        "/api/logs/drawer",
		Summary:     "Log Drawer",
		Description: "Open or close the log drawer. Backend logs are only polled while it is open.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *models.LogDrawerRequest) (*models.LogsResponse, error) {
		s.console.Poller().SetLogDrawerOpen(input.Body.Open)
		entries, stale := s.console.Logs().Entries()
		return &models.LogsResponse{Body: models.LogsData{
			Open:    input.Body.Open,
			Stale:   stale,
			Entries: entries,
		}}, nil
	})

	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time console log streaming via Server-Sent Events. Sends historical logs first, then streams new logs.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Subscribe before replaying history; seq lets clients drop the overlap.
		eventCh := make(chan any, 100)
		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		var lastSeq uint64
		if buffer := logging.GetBuffer(); buffer != nil {
			for _, entry := range buffer.ReadAll() {
				if err := send.Data(logEntryEvent(entry)); err != nil {
					return
				}
				lastSeq = entry.Seq
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if e, ok := event.(events.LogEntryEvent); ok && e.Seq <= lastSeq {
					continue
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

func logEntryEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Seq:        entry.Seq,
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
