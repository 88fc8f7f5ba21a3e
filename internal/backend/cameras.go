package backend

import (
	"context"

	"github.com/smazurov/ptzdeck/internal/models"
)

// ListCameras fetches the full camera list.
func (c *Client) ListCameras(ctx context.Context) ([]models.Camera, error) {
	var cameras []models.Camera
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetResult(&cameras).
		Get("/cameras")
	if err := check("list cameras", resp, err); err != nil {
		return nil, err
	}
	if cameras == nil {
		cameras = []models.Camera{}
	}
	return cameras, nil
}

// CreateCamera adds a new camera.
func (c *Client) CreateCamera(ctx context.Context, in models.CameraInput) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetBody(in).
		Post("/cameras")
	return check("create camera", resp, err)
}

// UpdateCamera replaces the configuration of an existing camera.
func (c *Client) UpdateCamera(ctx context.Context, id string, in models.CameraInput) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(in).
		Put("/cameras/{id}")
	return check("update camera", resp, err)
}

// DeleteCamera removes a camera.
func (c *Client) DeleteCamera(ctx context.Context, id string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/cameras/{id}")
	return check("delete camera", resp, err)
}

// RestartPreview asks the backend to restart the preview pipeline of a camera.
func (c *Client) RestartPreview(ctx context.Context, id string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Post("/cameras/{id}/preview/restart")
	return check("restart preview", resp, err)
}
