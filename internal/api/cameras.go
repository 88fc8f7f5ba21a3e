package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/ptzdeck/internal/api/models"
	"github.com/smazurov/ptzdeck/internal/editor"
)

// registerCameraRoutes registers grid, camera list and camera editor endpoints.
func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-grid",
		Method:      http.MethodGet,
		Path:        "/api/grid",
		Summary:     "Preview Grid",
		Description: "Get the four preview slots with strategy, badges and player status",
		Tags:        []string{"grid"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.GridResponse, error) {
		return &models.GridResponse{Body: models.GridData{Slots: s.console.Renderer().Slots()}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-cameras",
		Method:      http.MethodGet,
		Path:        "/api/cameras",
		Summary:     "List Cameras",
		Description: "List the cameras of the latest applied snapshot",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.CameraListResponse, error) {
		cams := s.console.Store().Cameras()
		return &models.CameraListResponse{Body: models.CameraListData{
			Cameras: cams,
			Count:   len(cams),
			Loaded:  s.console.Store().Loaded(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Console Status",
		Description: "Get the full console state",
		Tags:        []string{"system"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.console.State()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "create-camera",
		Method:      http.MethodPost,
		Path:        "/api/cameras",
		Summary:     "Create Camera",
		Description: "Create a camera from an editor form",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422, 502},
	}, func(ctx context.Context, input *models.CameraFormRequest) (*models.CameraSavedResponse, error) {
		form := input.Body
		form.Mode = editor.ModeCreate
		id, err := s.console.SaveCamera(ctx, form)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.CameraSavedResponse{Body: models.CameraSavedData{ID: id}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-camera",
		Method:      http.MethodPut,
		Path:        "/api/cameras/{id}",
		Summary:     "Update Camera",
		Description: "Replace the configuration of a camera. An empty password keeps the stored one.",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 422, 502},
	}, func(ctx context.Context, input *models.CameraUpdateRequest) (*models.CameraSavedResponse, error) {
		if !s.console.Store().Has(input.ID) {
			return nil, huma.Error404NotFound("camera not found: " + input.ID)
		}
		form := input.Body
		form.Mode = editor.ModeEdit
		form.ID = input.ID
		id, err := s.console.SaveCamera(ctx, form)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.CameraSavedResponse{Body: models.CameraSavedData{ID: id}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-camera",
		Method:      http.MethodDelete,
		Path:        "/api/cameras/{id}",
		Summary:     "Delete Camera",
		Description: "Delete a camera. The request counts as the operator's confirmation.",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 502},
	}, func(ctx context.Context, input *models.CameraIDRequest) (*struct{}, error) {
		if err := s.console.DeleteCamera(editor.Confirmed(ctx), input.ID); err != nil {
			return nil, s.mapConsoleError(err)
		}
		return nil, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-preview",
		Method:      http.MethodPost,
		Path:        "/api/cameras/{id}/preview/restart",
		Summary:     "Restart Preview",
		Description: "Restart the backend stream of a camera and reload its preview",
		Tags:        []string{"grid"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 502},
	}, func(ctx context.Context, input *models.CameraIDRequest) (*models.AcceptedResponse, error) {
		if err := s.console.RestartPreview(ctx, input.ID); err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.AcceptedResponse{Body: models.AcceptedData{Status: "restarted"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "scan-ndi",
		Method:      http.MethodGet,
		Path:        "/api/ndi/sources",
		Summary:     "Scan NDI Sources",
		Description: "Discover NDI sources for the camera editor",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{401, 502},
	}, func(ctx context.Context, _ *struct{}) (*models.NDISourcesResponse, error) {
		res, err := s.console.ScanNDI(ctx)
		if err != nil {
			return nil, s.mapConsoleError(err)
		}
		return &models.NDISourcesResponse{Body: res}, nil
	})
}
