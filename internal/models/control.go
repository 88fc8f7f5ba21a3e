package models

// PTZAction is one of the continuous-control protocol actions.
type PTZAction string

// PTZ actions accepted by POST /cameras/{id}/ptz.
const (
	PTZMove PTZAction = "move"
	PTZZoom PTZAction = "zoom"
	PTZStop PTZAction = "stop"
)

// PTZRequest is the body of POST /cameras/{id}/ptz.
type PTZRequest struct {
	Action PTZAction `json:"action"`
	Pan    *float64  `json:"pan,omitempty"`
	Tilt   *float64  `json:"tilt,omitempty"`
	Zoom   *float64  `json:"zoom,omitempty"`
	Speed  *float64  `json:"speed,omitempty"`
}

// Preset is a named device-side PTZ position.
type Preset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HealthStatus is the global backend health summary.
type HealthStatus string

// Backend health states.
const (
	HealthOK       HealthStatus = "ok"
	HealthDegraded HealthStatus = "degraded"
)

// Health is the body of GET /health.
type Health struct {
	Status       HealthStatus `json:"status"`
	PreviewError int          `json:"preview_error"`
	ControlError int          `json:"control_error"`
}

// LogEntry is one line of GET /logs.
type LogEntry struct {
	TS       string `json:"ts"`
	Level    string `json:"level"`
	CameraID string `json:"camera_id,omitempty"`
	Message  string `json:"message"`
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s, for optional request fields.
func String(s string) *string {
	return &s
}
