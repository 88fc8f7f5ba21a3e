package backend

import (
	"context"

	"github.com/smazurov/ptzdeck/internal/models"
)

// SendPTZ posts one continuous-control command.
func (c *Client) SendPTZ(ctx context.Context, id string, req models.PTZRequest) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(req).
		Post("/cameras/{id}/ptz")
	return check("ptz "+string(req.Action), resp, err)
}
