package backend

import (
	"context"

	"github.com/smazurov/ptzdeck/internal/models"
)

// ListPresets fetches the presets known for a camera.
func (c *Client) ListPresets(ctx context.Context, id string) ([]models.Preset, error) {
	var presets []models.Preset
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&presets).
		Get("/cameras/{id}/presets")
	if err := check("list presets", resp, err); err != nil {
		return nil, err
	}
	if presets == nil {
		presets = []models.Preset{}
	}
	return presets, nil
}

// RefreshPresets forces the backend to re-enumerate device side presets.
func (c *Client) RefreshPresets(ctx context.Context, id string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Post("/cameras/{id}/presets/refresh")
	return check("refresh presets", resp, err)
}

// GotoPreset moves the camera to a stored preset.
func (c *Client) GotoPreset(ctx context.Context, id, presetID string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": id, "preset": presetID}).
		Post("/cameras/{id}/presets/{preset}/goto")
	return check("goto preset", resp, err)
}

// SetPreset stores the current position under name.
func (c *Client) SetPreset(ctx context.Context, id, name string) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": id, "name": name}).
		Post("/cameras/{id}/presets/{name}/set")
	return check("set preset", resp, err)
}
