package events

import "github.com/smazurov/ptzdeck/internal/models"

// Event type constants for kelindar/event.
const (
	TypeCamerasUpdated uint32 = iota + 1
	TypeHealthUpdated
	TypeSelectionChanged
	TypeSlotChanged
	TypePlayerStatus
	TypePresetsUpdated
	TypeNotice
	TypeLogEntry
	TypeBackendLogs
	TypePTZSent
	TypeSpeedChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CamerasUpdatedEvent is published after the camera snapshot was replaced.
type CamerasUpdatedEvent struct {
	Seq       uint64          `json:"seq" example:"12" doc:"Refresh ticket that produced this snapshot"`
	Cameras   []models.Camera `json:"cameras" doc:"Full camera list, in backend order"`
	Timestamp string          `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CamerasUpdatedEvent.
func (e CamerasUpdatedEvent) Type() uint32 { return TypeCamerasUpdated }

// HealthUpdatedEvent carries the backend health as displayed by the console.
type HealthUpdatedEvent struct {
	State        string `json:"state" example:"ok" enum:"ok,degraded,offline" doc:"Display state"`
	PreviewError int    `json:"preview_error" doc:"Cameras whose preview is in error"`
	ControlError int    `json:"control_error" doc:"Cameras whose control link is in error"`
	Timestamp    string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for HealthUpdatedEvent.
func (e HealthUpdatedEvent) Type() uint32 { return TypeHealthUpdated }

// SelectionChangedEvent is published when the operator selects or deselects a camera.
type SelectionChangedEvent struct {
	CameraID  string `json:"camera_id" example:"cam_1a2b3c4d" doc:"Selected camera, empty when cleared"`
	Previous  string `json:"previous,omitempty" doc:"Previously selected camera"`
	Reason    string `json:"reason" example:"operator" enum:"operator,removed,deleted" doc:"Why the selection changed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SelectionChangedEvent.
func (e SelectionChangedEvent) Type() uint32 { return TypeSelectionChanged }

// SlotChangedEvent describes one change made while reconciling the preview grid.
type SlotChangedEvent struct {
	Slot      int    `json:"slot" example:"0" doc:"Grid slot index (0-3)"`
	CameraID  string `json:"camera_id,omitempty" doc:"Camera now shown in the slot"`
	Strategy  string `json:"strategy,omitempty" example:"snapshot" enum:"offline,snapshot,segmented" doc:"Playback strategy"`
	Action    string `json:"action" example:"mounted" enum:"mounted,moved,unmounted,emptied" doc:"Reconcile action"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SlotChangedEvent.
func (e SlotChangedEvent) Type() uint32 { return TypeSlotChanged }

// PlayerStatusEvent is published when a preview player changes state or overlay.
type PlayerStatusEvent struct {
	CameraID  string `json:"camera_id" doc:"Camera the player belongs to"`
	Strategy  string `json:"strategy" enum:"offline,snapshot,segmented" doc:"Playback strategy"`
	State     string `json:"state" example:"playing" doc:"Player state"`
	Overlay   string `json:"overlay,omitempty" doc:"Error overlay text"`
	Frames    uint64 `json:"frames" doc:"Frames or segments observed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PlayerStatusEvent.
func (e PlayerStatusEvent) Type() uint32 { return TypePlayerStatus }

// PresetsUpdatedEvent carries the preset list of the selected camera.
type PresetsUpdatedEvent struct {
	CameraID  string          `json:"camera_id" doc:"Camera the presets belong to"`
	Presets   []models.Preset `json:"presets" doc:"Preset list"`
	Timestamp string          `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PresetsUpdatedEvent.
func (e PresetsUpdatedEvent) Type() uint32 { return TypePresetsUpdated }

// NoticeEvent is an operator facing message. Blocking notices stay until dismissed.
type NoticeEvent struct {
	ID        uint64 `json:"id" doc:"Notice identifier"`
	Level     string `json:"level" example:"error" enum:"info,warn,error" doc:"Severity"`
	Message   string `json:"message" doc:"Text shown to the operator"`
	Blocking  bool   `json:"blocking" doc:"Requires acknowledgement"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NoticeEvent.
func (e NoticeEvent) Type() uint32 { return TypeNotice }

// LogEntryEvent represents a local log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"ptz" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// BackendLogsEvent carries the latest backend log page for the log drawer.
type BackendLogsEvent struct {
	Entries   []models.LogEntry `json:"entries" doc:"Most recent backend log entries"`
	Stale     bool              `json:"stale" doc:"True when the last fetch failed and entries are from an earlier poll"`
	Timestamp string            `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BackendLogsEvent.
func (e BackendLogsEvent) Type() uint32 { return TypeBackendLogs }

// PTZSentEvent is published after a PTZ command completes.
type PTZSentEvent struct {
	CameraID  string  `json:"camera_id" doc:"Target camera"`
	Control   string  `json:"control" example:"up-left" doc:"Control that produced the command"`
	Action    string  `json:"action" example:"move" enum:"move,zoom,stop" doc:"PTZ action"`
	Speed     float64 `json:"speed,omitempty" example:"0.5" doc:"Speed sent with the command"`
	Error     string  `json:"error,omitempty" doc:"Failure, if any"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PTZSentEvent.
func (e PTZSentEvent) Type() uint32 { return TypePTZSent }

// SpeedChangedEvent is published when the PTZ speed slider moves.
type SpeedChangedEvent struct {
	Speed     float64 `json:"speed" example:"0.6" doc:"New slider value"`
	Timestamp string  `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SpeedChangedEvent.
func (e SpeedChangedEvent) Type() uint32 { return TypeSpeedChanged }
