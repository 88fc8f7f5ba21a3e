package backend

import (
	"context"
	"strconv"

	"github.com/smazurov/ptzdeck/internal/models"
)

// Health fetches the global backend health summary.
func (c *Client) Health(ctx context.Context) (models.Health, error) {
	var health models.Health
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetResult(&health).
		Get("/health")
	if err := check("health", resp, err); err != nil {
		return models.Health{}, err
	}
	return health, nil
}

// Logs fetches the newest backend log entries, oldest first.
func (c *Client) Logs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	req := c.HTTP.R().
		SetContext(ctx).
		SetResult(&entries)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/logs")
	if err := check("logs", resp, err); err != nil {
		return nil, err
	}
	return entries, nil
}
