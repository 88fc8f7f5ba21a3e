package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/ptzdeck/internal/models"
)

type recordedRequest struct {
	Method  string
	Path    string
	RawPath string
	Query   string
	Body    string
}

// fakeBackend records requests and answers from a route table keyed by "METHOD path".
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{routes: make(map[string]func(w http.ResponseWriter))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			RawPath: r.URL.EscapedPath(),
			Query:   r.URL.RawQuery,
			Body:    string(body),
		})
		route := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()

		if route == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		route(w)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	return fb, client
}

func (fb *fakeBackend) handle(route string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[route] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (fb *fakeBackend) last() recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		return recordedRequest{}
	}
	return fb.requests[len(fb.requests)-1]
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://nope"} {
		if _, err := New(Config{BaseURL: raw}); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestListCameras(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/cameras", http.StatusOK, []map[string]any{
		{"id": "cam_1", "name": "Stage", "stream_url": "/api/video/cam_1/mjpeg", "control_status": "ok"},
		{"id": "cam_2", "name": "Lobby"},
	})

	cameras, err := client.ListCameras(context.Background())
	if err != nil {
		t.Fatalf("ListCameras: %v", err)
	}
	if len(cameras) != 2 {
		t.Fatalf("got %d cameras, want 2", len(cameras))
	}
	if cameras[0].ID != "cam_1" || !cameras[0].Online() {
		t.Errorf("unexpected first camera: %+v", cameras[0])
	}
	if cameras[1].Online() {
		t.Error("camera without stream_url must be offline")
	}
}

func TestListCamerasEmptyIsNotNil(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/cameras", http.StatusOK, []any{})

	cameras, err := client.ListCameras(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cameras == nil {
		t.Error("empty list should not be nil")
	}
}

func TestAPIErrorOnNon2xx(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("DELETE /api/cameras/cam_1", http.StatusNotFound, map[string]string{"detail": "Camera not found"})

	err := client.DeleteCamera(context.Background(), "cam_1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || StatusCode(err) != http.StatusNotFound {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
	if !strings.Contains(err.Error(), "Camera not found") {
		t.Errorf("error should carry the body: %v", err)
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1/api", Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Health(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if StatusCode(err) != 0 {
		t.Errorf("transport errors are not APIErrors: %v", err)
	}
}

func TestCreateAndUpdateCamera(t *testing.T) {
	fb, client := newFakeBackend(t)
	in := models.CameraInput{
		ID:      "cam_1",
		Name:    "Stage",
		Preview: models.Preview{Type: models.PreviewNDI, NDISource: models.String("HOST (Cam)")},
	}

	if err := client.CreateCamera(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	req := fb.last()
	if req.Method != http.MethodPost || req.Path != "/api/cameras" {
		t.Errorf("create sent %s %s", req.Method, req.Path)
	}
	if strings.Contains(req.Body, "password") || !strings.Contains(req.Body, `"rtsp_url":null`) {
		t.Errorf("unexpected create body: %s", req.Body)
	}

	in.Password = "secret"
	if err := client.UpdateCamera(context.Background(), "cam_1", in); err != nil {
		t.Fatal(err)
	}
	req = fb.last()
	if req.Method != http.MethodPut || req.Path != "/api/cameras/cam_1" {
		t.Errorf("update sent %s %s", req.Method, req.Path)
	}
	if !strings.Contains(req.Body, `"password":"secret"`) {
		t.Errorf("re-entered password must be sent: %s", req.Body)
	}
}

func TestSendPTZ(t *testing.T) {
	fb, client := newFakeBackend(t)
	err := client.SendPTZ(context.Background(), "cam_1", models.PTZRequest{
		Action: models.PTZMove,
		Pan:    models.Float(-1),
		Tilt:   models.Float(0),
		Speed:  models.Float(0.5),
	})
	if err != nil {
		t.Fatal(err)
	}

	req := fb.last()
	if req.Path != "/api/cameras/cam_1/ptz" {
		t.Errorf("path = %s", req.Path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		t.Fatal(err)
	}
	if body["action"] != "move" || body["pan"] != -1.0 || body["tilt"] != 0.0 || body["speed"] != 0.5 {
		t.Errorf("unexpected body: %s", req.Body)
	}
	if _, ok := body["zoom"]; ok {
		t.Errorf("unset zoom must be omitted: %s", req.Body)
	}
}

func TestPresetPathsAreEscaped(t *testing.T) {
	fb, client := newFakeBackend(t)

	if err := client.SetPreset(context.Background(), "cam_1", "wide shot/left"); err != nil {
		t.Fatal(err)
	}
	req := fb.last()
	if req.Path != "/api/cameras/cam_1/presets/wide shot/left/set" {
		t.Errorf("decoded path = %q", req.Path)
	}
	if !strings.Contains(req.RawPath, "wide%20shot%2Fleft") {
		t.Errorf("preset name not escaped: %q", req.RawPath)
	}

	if err := client.GotoPreset(context.Background(), "cam_1", "3"); err != nil {
		t.Fatal(err)
	}
	if got := fb.last().Path; got != "/api/cameras/cam_1/presets/3/goto" {
		t.Errorf("goto path = %s", got)
	}

	if err := client.RefreshPresets(context.Background(), "cam_1"); err != nil {
		t.Fatal(err)
	}
	if got := fb.last(); got.Method != http.MethodPost || got.Path != "/api/cameras/cam_1/presets/refresh" {
		t.Errorf("refresh sent %s %s", got.Method, got.Path)
	}
}

func TestListPresetsAndNDISources(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/cameras/cam_1/presets", http.StatusOK, []models.Preset{{ID: "1", Name: "Home"}})
	fb.handle("GET /api/ndi/sources", http.StatusOK, []string{})

	presets, err := client.ListPresets(context.Background(), "cam_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(presets) != 1 || presets[0].Name != "Home" {
		t.Errorf("presets = %+v", presets)
	}

	sources, err := client.ListNDISources(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sources == nil || len(sources) != 0 {
		t.Errorf("empty NDI scan should be a non-nil empty slice, got %#v", sources)
	}
}

func TestHealthAndLogs(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /api/health", http.StatusOK, models.Health{Status: models.HealthDegraded, PreviewError: 2})
	fb.handle("GET /api/logs", http.StatusOK, []models.LogEntry{{TS: "10:00:00", Level: "INFO", Message: "ready"}})

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if health.Status != models.HealthDegraded || health.PreviewError != 2 {
		t.Errorf("health = %+v", health)
	}

	entries, err := client.Logs(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || fb.last().Query != "limit=50" {
		t.Errorf("entries = %+v, query = %q", entries, fb.last().Query)
	}
}

func TestResolveURL(t *testing.T) {
	client, err := New(Config{BaseURL: "http://backend:8000/api"})
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		"/api/video/cam_1/mjpeg":           "http://backend:8000/api/video/cam_1/mjpeg",
		"http://other:8888/cam/index.m3u8": "http://other:8888/cam/index.m3u8",
	}
	for in, want := range tests {
		got, err := client.ResolveURL(in)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("ResolveURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenStreamStatus(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.handle("GET /hls/missing.m3u8", http.StatusNotFound, nil)

	url, _ := client.ResolveURL("/hls/missing.m3u8")
	if _, err := client.OpenStream(context.Background(), url); StatusCode(err) != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}
