package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/store"
)

// ErrNotConfirmed is returned when the operator declined a delete.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Scan button labels.
const (
	ScanLabel     = "Scan"
	ScanningLabel = "Scanning..."
)

// Backend is the camera write and discovery surface.
type Backend interface {
	CreateCamera(ctx context.Context, in models.CameraInput) error
	UpdateCamera(ctx context.Context, id string, in models.CameraInput) error
	DeleteCamera(ctx context.Context, id string) error
	ListNDISources(ctx context.Context) ([]string, error)
}

// Cameras is the read side of the camera store.
type Cameras interface {
	Get(id string) (models.Camera, bool)
	Has(id string) bool
	Refresh(ctx context.Context) error
}

// Notifier shows operator notices.
type Notifier interface {
	Notify(level, message string, blocking bool)
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer func(ctx context.Context, prompt string) bool

type confirmedKey struct{}

// Confirmed marks ctx as already approved by the operator, for callers where
// the request itself is the confirmation.
func Confirmed(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmedKey{}, true)
}

func isConfirmed(ctx context.Context) bool {
	ok, _ := ctx.Value(confirmedKey{}).(bool)
	return ok
}

// Config wires an Editor.
type Config struct {
	Backend  Backend
	Cameras  Cameras
	Confirm  Confirmer
	Notifier Notifier
	// OnDeleted runs after a successful delete, before the store refresh.
	OnDeleted func(id string)
	Logger    *slog.Logger
}

// Option is one entry of the NDI source selector.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// ScanResult is the selector state after an NDI scan.
type ScanResult struct {
	Options     []Option `json:"options"`
	ButtonLabel string   `json:"button_label"`
}

// Editor owns the camera form.
type Editor struct {
	backend   Backend
	cameras   Cameras
	confirm   Confirmer
	notifier  Notifier
	onDeleted func(string)
	logger    *slog.Logger

	mu       sync.Mutex
	form     Form
	open     bool
	scanning bool
}

// New creates an editor.
func New(cfg Config) *Editor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Editor{
		backend:   cfg.Backend,
		cameras:   cfg.Cameras,
		confirm:   cfg.Confirm,
		notifier:  cfg.Notifier,
		onDeleted: cfg.OnDeleted,
		logger:    cfg.Logger,
		form:      NewForm(),
	}
}

// OpenCreate resets the form for a new camera.
func (e *Editor) OpenCreate() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = NewForm()
	e.open = true
	return e.form
}

// OpenEdit pre-fills the form from the stored camera.
func (e *Editor) OpenEdit(id string) (Form, error) {
	cam, ok := e.cameras.Get(id)
	if !ok {
		return Form{}, fmt.Errorf("edit %s: %w", id, store.ErrUnknownCamera)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = FormFromCamera(cam)
	e.open = true
	return e.form, nil
}

// Form returns the open form.
func (e *Editor) Form() (Form, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form, e.open
}

// Update edits the open form in place.
func (e *Editor) Update(fn func(*Form)) Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.form)
	return e.form
}

// Close discards the form.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = NewForm()
	e.open = false
}

// Save persists the open form and closes it on success.
func (e *Editor) Save(ctx context.Context) (string, error) {
	form, _ := e.Form()
	id, err := e.SaveForm(ctx, form)
	if err == nil {
		e.Close()
	}
	return id, err
}

// SaveForm validates and persists form. A camera the store already knows is
// updated, anything else is created. The id is generated when blank.
func (e *Editor) SaveForm(ctx context.Context, form Form) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}

	id := strings.TrimSpace(form.ID)
	if id == "" {
		id = GenerateID()
	}
	payload := form.Payload(id)

	var err error
	if e.cameras.Has(id) {
		err = e.backend.UpdateCamera(ctx, id, payload)
	} else {
		err = e.backend.CreateCamera(ctx, payload)
	}
	if err != nil {
		e.logger.Error("Failed to save camera", "camera_id", id, "error", err)
		e.notify(fmt.Sprintf("Failed to save camera: %v", err))
		return "", fmt.Errorf("save camera %s: %w", id, err)
	}
	e.logger.Info("Camera saved", "camera_id", id, "source", payload.Preview.Type)

	if err := e.cameras.Refresh(ctx); err != nil {
		e.logger.Warn("Camera list refresh after save failed", "error", err)
	}
	return id, nil
}

// Delete removes a camera once the operator confirmed.
func (e *Editor) Delete(ctx context.Context, id string) error {
	name := id
	if cam, ok := e.cameras.Get(id); ok && cam.Name != "" {
		name = cam.Name
	}
	if !isConfirmed(ctx) && (e.confirm == nil || !e.confirm(ctx, fmt.Sprintf("Delete camera %s?", name))) {
		return ErrNotConfirmed
	}

	if err := e.backend.DeleteCamera(ctx, id); err != nil {
		e.logger.Error("Failed to delete camera", "camera_id", id, "error", err)
		e.notify(fmt.Sprintf("Failed to delete camera: %v", err))
		return fmt.Errorf("delete camera %s: %w", id, err)
	}
	e.logger.Info("Camera deleted", "camera_id", id)

	if e.onDeleted != nil {
		e.onDeleted(id)
	}
	if err := e.cameras.Refresh(ctx); err != nil {
		e.logger.Warn("Camera list refresh after delete failed", "error", err)
	}
	return nil
}

// ScanLabel returns the scan button label.
func (e *Editor) ScanLabel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scanning {
		return ScanningLabel
	}
	return ScanLabel
}

// ScanNDI lists NDI sources as selector options.
func (e *Editor) ScanNDI(ctx context.Context) (ScanResult, error) {
	e.mu.Lock()
	e.scanning = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.scanning = false
		e.mu.Unlock()
	}()

	sources, err := e.backend.ListNDISources(ctx)
	if err != nil {
		e.logger.Warn("NDI scan failed", "error", err)
		e.notify("Failed to scan NDI sources")
		return ScanResult{ButtonLabel: ScanLabel}, fmt.Errorf("scan ndi: %w", err)
	}
	return ScanResult{Options: NDIOptions(sources), ButtonLabel: ScanLabel}, nil
}

// NDIOptions builds selector entries from discovered sources.
func NDIOptions(sources []string) []Option {
	if len(sources) == 0 {
		return []Option{{Label: "No sources found", Disabled: true}}
	}
	opts := make([]Option, 0, len(sources)+1)
	opts = append(opts, Option{Label: "Select NDI Source..."})
	for _, s := range sources {
		opts = append(opts, Option{Value: s, Label: s})
	}
	return opts
}

// GenerateID returns a new camera id of the form cam_xxxxxxxx.
func GenerateID() string {
	return "cam_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (e *Editor) notify(message string) {
	if e.notifier != nil {
		e.notifier.Notify("error", message, true)
	}
}
