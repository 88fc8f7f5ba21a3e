package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ptzdeck/internal/api/models"
	"github.com/smazurov/ptzdeck/internal/console"
)

// registerPresetRoutes registers preset endpoints. All of them act on the
// selected camera.
func (s *Server) registerPresetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-presets",
		Method:      http.MethodGet,
		Path:        "/api/presets",
		Summary:     "List Presets",
		Description: "List the presets of the selected camera",
		Tags:        []string{"presets"},
		Security:    withAuth(),
		Errors:      []int{401, 409},
	}, func(_ context.Context, _ *struct{}) (*models.PresetListResponse, error) {
		id := s.console.Selected()
		if id == "" {
			return nil, s.mapConsoleError(console.NewConsoleError(console.ErrCodeNoSelection, "no camera selected", console.ErrNoSelection))
		}
		return &models.PresetListResponse{Body: models.PresetListData{
			CameraID: id,
			Presets:  s.console.Presets().Presets(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh-presets",
		Method:      http.MethodPost,
		Path:        "/api/presets/refresh",
		Summary:     "Refresh Presets",
		Description: "Re-read presets from the selected camera",
		Tags:        []string{"presets"},
		Security:    withAuth(),
		Errors:      []int{401, 409, 502},
	}, func(ctx context.Context, _ *struct{}) (*models.PresetListResponse, error) {
		list, err := s.console.RefreshPresets(ctx)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.PresetListResponse{Body: models.PresetListData{
			CameraID: s.console.Selected(),
			Presets:  list,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "create-preset",
		Method:      http.MethodPost,
		Path:        "/api/presets",
		Summary:     "Create Preset",
		Description: "Save the current position of the selected camera and wait for the preset to appear",
		Tags:        []string{"presets"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 409, 422, 502, 504},
	}, func(ctx context.Context, input *models.PresetCreateRequest) (*models.PresetResponse, error) {
		p, err := s.console.CreatePreset(ctx, input.Body.Name)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.PresetResponse{Body: p}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "goto-preset",
		Method:      http.MethodPost,
		Path:        "/api/presets/{presetId}/goto",
		Summary:     "Go To Preset",
		Description: "Move the selected camera to a preset. The move is not awaited.",
		Tags:        []string{"presets"},
		Security:    withAuth(),
		Errors:      []int{401, 409},
	}, func(_ context.Context, input *models.PresetGotoRequest) (*models.AcceptedResponse, error) {
		if err := s.console.GotoPreset(input.PresetID); err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.AcceptedResponse{Body: models.AcceptedData{Status: "accepted"}}, nil
	})
}
