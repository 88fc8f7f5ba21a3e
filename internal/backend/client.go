package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/smazurov/ptzdeck/internal/version"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client talks to the camera backend REST contract.
type Client struct {
	HTTP   *resty.Client
	media  *resty.Client
	base   *url.URL
	logger *slog.Logger
}

// APIError is returned for non-2xx backend responses.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, body)
}

// StatusCode extracts the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// New creates a backend client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q: scheme and host required", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := resty.New()
	r.SetBaseURL(base.String())
	r.SetTimeout(timeout)
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", version.UserAgent())
	r.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("Backend request",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time())
		return nil
	})

	// Preview streams are long lived, so the media client has no overall timeout.
	media := resty.New()
	media.SetHeader("Cache-Control", "no-cache")
	media.SetHeader("User-Agent", version.UserAgent())

	return &Client{
		HTTP:   r,
		media:  media,
		base:   base,
		logger: logger,
	}, nil
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ResolveURL turns a stream_url reported by the backend into an absolute URL.
// Relative paths resolve against the backend origin.
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid stream url %q: %w", ref, err)
	}
	return c.base.ResolveReference(u).String(), nil
}

// check converts a resty response into the package error conventions.
func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return &APIError{Op: op, Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
