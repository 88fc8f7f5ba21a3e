package backend

import "context"

// ListNDISources returns the NDI sources visible to the backend.
// An empty result is a valid answer and is never nil.
func (c *Client) ListNDISources(ctx context.Context) ([]string, error) {
	var sources []string
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetResult(&sources).
		Get("/ndi/sources")
	if err := check("list ndi sources", resp, err); err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []string{}
	}
	return sources, nil
}
