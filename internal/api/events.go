package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/ptzdeck/internal/events"
)

// consoleEventTypes maps SSE event names to the bus events forwarded on /api/events.
var consoleEventTypes = map[string]any{
	"cameras-updated":   events.CamerasUpdatedEvent{},
	"health-updated":    events.HealthUpdatedEvent{},
	"selection-changed": events.SelectionChangedEvent{},
	"slot-changed":      events.SlotChangedEvent{},
	"player-status":     events.PlayerStatusEvent{},
	"presets-updated":   events.PresetsUpdatedEvent{},
	"notice":            events.NoticeEvent{},
	"backend-logs":      events.BackendLogsEvent{},
	"ptz-sent":          events.PTZSentEvent{},
	"speed-changed":     events.SpeedChangedEvent{},
}

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of camera list, health, selection, preview, preset and PTZ events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, consoleEventTypes, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)
		unsubscribe := events.SubscribeAll(s.eventBus, eventCh)
		defer unsubscribe()

		// New clients start from the current camera list.
		snap := s.console.Store().Snapshot()
		if err := send.Data(events.CamerasUpdatedEvent{
			Seq:       snap.Seq,
			Cameras:   snap.Cameras,
			Timestamp: events.Now(),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if _, isLog := event.(events.LogEntryEvent); isLog {
					continue
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
