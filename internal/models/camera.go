// Package models holds the records exchanged with the camera backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// PreviewType selects where a camera's preview feed comes from.
type PreviewType string

// Preview source types.
const (
	PreviewRTSP  PreviewType = "rtsp"
	PreviewNDI   PreviewType = "ndi"
	PreviewMJPEG PreviewType = "mjpeg"
)

// ControlStatus is the health of the PTZ control path.
type ControlStatus string

// Control path states.
const (
	ControlOK      ControlStatus = "ok"
	ControlError   ControlStatus = "error"
	ControlOffline ControlStatus = "offline"
)

// PreviewStatus is the health of the preview path.
type PreviewStatus string

// Preview path states.
const (
	PreviewOK         PreviewStatus = "ok"
	PreviewStarting   PreviewStatus = "starting"
	PreviewRestarting PreviewStatus = "restarting"
	PreviewError      PreviewStatus = "error"
	PreviewOffline    PreviewStatus = "offline"
)

// Preview describes the configured preview source. Only the field matching
// Type is meaningful; the other is null on the wire.
type Preview struct {
	Type      PreviewType `json:"type"`
	RTSPURL   *string     `json:"rtsp_url"`
	NDISource *string     `json:"ndi_source"`
}

// Capabilities reports optional features of a camera.
type Capabilities struct {
	Presets bool `json:"presets"`
	PTZ     bool `json:"ptz"`
}

// Camera is a camera record as returned by GET /cameras.
// The backend never echoes the password.
type Camera struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	IP                  string        `json:"ip"`
	ONVIFPort           int           `json:"onvif_port"`
	Username            string        `json:"username"`
	Preview             Preview       `json:"preview"`
	StreamURL           string        `json:"stream_url,omitempty"`
	ControlStatus       ControlStatus `json:"control_status,omitempty"`
	PreviewStatus       PreviewStatus `json:"preview_status,omitempty"`
	PreviewLastSeen     Timestamp     `json:"preview_last_seen,omitzero"`
	PreviewLastError    string        `json:"preview_last_error,omitempty"`
	Capabilities        Capabilities  `json:"capabilities"`
	ActivePreviewSource string        `json:"active_preview_source,omitempty"`
}

// Online reports whether the backend computed a stream URL for the camera.
func (c Camera) Online() bool {
	return c.StreamURL != ""
}

// CameraInput is the body of POST /cameras and PUT /cameras/{id}.
// An empty Password is omitted, which the backend treats as "leave unchanged".
type CameraInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IP        string  `json:"ip"`
	ONVIFPort int     `json:"onvif_port"`
	Username  string  `json:"username"`
	Password  string  `json:"password,omitempty"`
	Preview   Preview `json:"preview"`
}

// Timestamp accepts either an RFC3339 string or a unix seconds number.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	secs, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	whole := int64(secs)
	t.Time = time.Unix(whole, int64((secs-float64(whole))*1e9)).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
