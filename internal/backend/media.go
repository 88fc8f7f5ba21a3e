package backend

import (
	"context"
	"fmt"
	"net/http"
)

// OpenStream starts a long-lived GET for a preview stream. The caller owns
// the response body. Cancel ctx to stop the transfer.
func (c *Client) OpenStream(ctx context.Context, rawURL string) (*http.Response, error) {
	resp, err := c.media.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	raw := resp.RawResponse
	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		_ = raw.Body.Close()
		return nil, &APIError{Op: "open stream", Status: raw.StatusCode}
	}
	return raw, nil
}

// FetchManifest downloads a playlist or other small media document.
func (c *Client) FetchManifest(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.apple.mpegurl, */*").
		SetHeader("Cache-Control", "no-cache").
		Get(rawURL)
	if err := check("fetch manifest", resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
