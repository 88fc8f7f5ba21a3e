// Package models holds the request and response bodies of the local control API.
package models

import (
	"github.com/smazurov/ptzdeck/internal/console"
	"github.com/smazurov/ptzdeck/internal/editor"
	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/render"
	"github.com/smazurov/ptzdeck/internal/version"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionResponse struct {
	Body version.Info
}

// Grid and camera models
type GridData struct {
	Slots []render.SlotView `json:"slots" doc:"The four preview slots in order"`
}

type GridResponse struct {
	Body GridData
}

type CameraListData struct {
	Cameras []models.Camera `json:"cameras" doc:"Server-owned camera list"`
	Count   int             `json:"count" example:"2" doc:"Number of cameras"`
	Loaded  bool            `json:"loaded" doc:"False until the first successful poll"`
}

type CameraListResponse struct {
	Body CameraListData
}

type StatusResponse struct {
	Body console.State
}

// Camera editor models
type CameraFormRequest struct {
	Body editor.Form
}

type CameraUpdateRequest struct {
	ID   string `path:"id" doc:"Camera identifier"`
	Body editor.Form
}

type CameraIDRequest struct {
	ID string `path:"id" doc:"Camera identifier"`
}

type CameraSavedData struct {
	ID string `json:"id" example:"cam_1a2b3c4d" doc:"Identifier of the saved camera"`
}

type CameraSavedResponse struct {
	Body CameraSavedData
}

type NDISourcesResponse struct {
	Body editor.ScanResult
}

// Selection and control models
type SelectionRequest struct {
	Body struct {
		CameraID string `json:"camera_id" minLength:"1" example:"cam_1a2b3c4d" doc:"Camera to select"`
	}
}

type SelectionData struct {
	Selected string               `json:"selected" doc:"Selected camera id, empty when none"`
	Controls console.ControlsView `json:"controls" doc:"PTZ pad state"`
}

type SelectionResponse struct {
	Body SelectionData
}

type InputRequest struct {
	Body console.InputEvent
}

type InputResponse struct {
	Body struct {
		Intent console.Intent `json:"intent" doc:"Intent the event resolved to"`
	}
}

type SpeedRequest struct {
	Body struct {
		Speed float64 `json:"speed" minimum:"0" maximum:"1" example:"0.5" doc:"Requested PTZ speed, clamped to 0.1..1.0"`
	}
}

type SpeedResponse struct {
	Body struct {
		Speed float64 `json:"speed" example:"0.5" doc:"Stored PTZ speed"`
	}
}

// Preset models
type PresetListData struct {
	CameraID string          `json:"camera_id" doc:"Camera the presets belong to"`
	Presets  []models.Preset `json:"presets" doc:"Preset list"`
}

type PresetListResponse struct {
	Body PresetListData
}

type PresetCreateRequest struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"64" example:"Wide" doc:"Preset name"`
	}
}

type PresetResponse struct {
	Body models.Preset
}

type PresetGotoRequest struct {
	PresetID string `path:"presetId" doc:"Preset identifier"`
}

// Log drawer models
type LogsData struct {
	Open    bool              `json:"open" doc:"Whether the log drawer is polling"`
	Stale   bool              `json:"stale" doc:"True when the last poll failed"`
	Entries []models.LogEntry `json:"entries" doc:"Latest backend log entries"`
}

type LogsResponse struct {
	Body LogsData
}

type LogDrawerRequest struct {
	Body struct {
		Open bool `json:"open" doc:"Open or close the log drawer"`
	}
}

type NoticeIDRequest struct {
	ID uint64 `path:"id" doc:"Notice identifier"`
}

// Generic acknowledgement
type AcceptedData struct {
	Status  string `json:"status" example:"accepted" doc:"Operation status"`
	Message string `json:"message,omitempty" doc:"Status message"`
}

type AcceptedResponse struct {
	Body AcceptedData
}
