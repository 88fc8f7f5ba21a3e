package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ptzdeck/internal/api/models"
)

// registerControlRoutes registers selection, input and PTZ speed endpoints.
func (s *Server) registerControlRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "select-camera",
		Method:      http.MethodPut,
		Path:        "/api/selection",
		Summary:     "Select Camera",
		Description: "Make a camera the target of PTZ and preset operations",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 422},
	}, func(ctx context.Context, input *models.SelectionRequest) (*models.SelectionResponse, error) {
		if err := s.console.Select(ctx, input.Body.CameraID); err != nil {
			return nil, s.mapConsoleError(err)
		}
		return s.selectionResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-selection",
		Method:      http.MethodDelete,
		Path:        "/api/selection",
		Summary:     "Clear Selection",
		Description: "Deselect the current camera and stop any held movement",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.SelectionResponse, error) {
		s.console.ClearSelection("operator")
		return s.selectionResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "send-input",
		Method:      http.MethodPost,
		Path:        "/api/input",
		Summary:     "Input Event",
		Description: "Feed a key, pointer or touch event through the console's input bindings",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 409, 422, 502},
	}, func(ctx context.Context, input *models.InputRequest) (*models.InputResponse, error) {
		intent, err := s.console.HandleInput(ctx, input.Body)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		resp := &models.InputResponse{}
		resp.Body.Intent = intent
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-ptz-speed",
		Method:      http.MethodPut,
		Path:        "/api/ptz/speed",
		Summary:     "Set PTZ Speed",
		Description: "Move the PTZ speed slider. Values are clamped to 0.1..1.0 in steps of 0.1.",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422},
	}, func(_ context.Context, input *models.SpeedRequest) (*models.SpeedResponse, error) {
		resp := &models.SpeedResponse{}
		resp.Body.Speed = s.console.SetSpeed(input.Body.Speed)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "dismiss-notice",
		Method:      http.MethodDelete,
		Path:        "/api/notices/{id}",
		Summary:     "Dismiss Notice",
		Description: "Acknowledge a blocking notice",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.NoticeIDRequest) (*struct{}, error) {
		if !s.console.Notices().Dismiss(input.ID) {
			return nil, huma.Error404NotFound("no blocking notice with that id")
		}
		return nil, nil
	})
}

func (s *Server) selectionResponse() *models.SelectionResponse {
	return &models.SelectionResponse{Body: models.SelectionData{
		Selected: s.console.Selected(),
		Controls: s.console.Controls(),
	}}
}
