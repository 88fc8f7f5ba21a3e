package editor

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/smazurov/ptzdeck/internal/models"
	"github.com/smazurov/ptzdeck/internal/store"
)

type fakeBackend struct {
	created   []models.CameraInput
	updated   map[string]models.CameraInput
	deleted   []string
	sources   []string
	err       error
	sourceErr error
}

func (b *fakeBackend) CreateCamera(_ context.Context, in models.CameraInput) error {
	if b.err != nil {
		return b.err
	}
	b.created = append(b.created, in)
	return nil
}

func (b *fakeBackend) UpdateCamera(_ context.Context, id string, in models.CameraInput) error {
	if b.err != nil {
		return b.err
	}
	if b.updated == nil {
		b.updated = make(map[string]models.CameraInput)
	}
	b.updated[id] = in
	return nil
}

func (b *fakeBackend) DeleteCamera(_ context.Context, id string) error {
	if b.err != nil {
		return b.err
	}
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *fakeBackend) ListNDISources(context.Context) ([]string, error) {
	return b.sources, b.sourceErr
}

type fakeCameras struct {
	cams      map[string]models.Camera
	refreshes int
}

func (c *fakeCameras) Get(id string) (models.Camera, bool) {
	cam, ok := c.cams[id]
	return cam, ok
}

func (c *fakeCameras) Has(id string) bool {
	_, ok := c.cams[id]
	return ok
}

func (c *fakeCameras) Refresh(context.Context) error {
	c.refreshes++
	return nil
}

type notices struct {
	blocking []string
}

func (n *notices) Notify(_, message string, blocking bool) {
	if blocking {
		n.blocking = append(n.blocking, message)
	}
}

func stageCamera() models.Camera {
	return models.Camera{
		ID:        "cam_stage",
		Name:      "Stage",
		IP:        "10.0.0.5",
		ONVIFPort: 8080,
		Username:  "admin",
		Preview:   models.Preview{Type: models.PreviewRTSP, RTSPURL: models.String("rtsp://10.0.0.5/main")},
	}
}

func newEditor(confirm bool) (*Editor, *fakeBackend, *fakeCameras, *notices) {
	backend := &fakeBackend{}
	cams := &fakeCameras{cams: map[string]models.Camera{"cam_stage": stageCamera()}}
	n := &notices{}
	e := New(Config{
		Backend:  backend,
		Cameras:  cams,
		Notifier: n,
		Confirm:  func(context.Context, string) bool { return confirm },
	})
	return e, backend, cams, n
}

func TestVisibleFieldsFollowSourceType(t *testing.T) {
	f := NewForm()
	if !slices.Contains(f.VisibleFields(), FieldRTSPURL) || slices.Contains(f.VisibleFields(), FieldNDISource) {
		t.Errorf("rtsp form fields = %v", f.VisibleFields())
	}
	f.SourceType = models.PreviewNDI
	if slices.Contains(f.VisibleFields(), FieldRTSPURL) || !slices.Contains(f.VisibleFields(), FieldNDISource) {
		t.Errorf("ndi form fields = %v", f.VisibleFields())
	}
}

func TestPayloadNullsInactiveSource(t *testing.T) {
	f := NewForm()
	f.Name = "Booth"
	f.SourceType = models.PreviewNDI
	f.NDISource = "BOOTH (Cam 1)"
	f.RTSPURL = "rtsp://left-over"

	data, err := json.Marshal(f.Payload("cam_1"))
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	if !strings.Contains(body, `"rtsp_url":null`) || !strings.Contains(body, `"ndi_source":"BOOTH (Cam 1)"`) {
		t.Errorf("payload = %s", body)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		fields []string
	}{
		{"valid rtsp", func(*Form) {}, nil},
		{"missing name", func(f *Form) { f.Name = " " }, []string{FieldName}},
		{"port zero", func(f *Form) { f.ONVIFPort = 0 }, []string{FieldONVIFPort}},
		{"port too high", func(f *Form) { f.ONVIFPort = 70000 }, []string{FieldONVIFPort}},
		{"rtsp without url", func(f *Form) { f.RTSPURL = "" }, []string{FieldRTSPURL}},
		{"ndi without source", func(f *Form) { f.SourceType = models.PreviewNDI }, []string{FieldNDISource}},
		{"several", func(f *Form) { f.Name = ""; f.ONVIFPort = -1 }, []string{FieldName, FieldONVIFPort}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			f.Name = "Stage"
			f.RTSPURL = "rtsp://cam/main"
			tt.mutate(&f)

			var got []string
			for _, fe := range FieldErrors(f.Validate()) {
				got = append(got, fe.Field)
			}
			if !slices.Equal(got, tt.fields) {
				t.Errorf("invalid fields = %v, want %v", got, tt.fields)
			}
		})
	}
}

func TestOpenEditPrefillsWithoutPassword(t *testing.T) {
	e, _, _, _ := newEditor(true)
	f, err := e.OpenEdit("cam_stage")
	if err != nil {
		t.Fatal(err)
	}
	if f.Mode != ModeEdit || f.Name != "Stage" || f.ONVIFPort != 8080 || f.RTSPURL != "rtsp://10.0.0.5/main" {
		t.Errorf("form = %+v", f)
	}
	if f.Password != "" {
		t.Error("password must never be pre-filled")
	}

	if _, err := e.OpenEdit("ghost"); !errors.Is(err, store.ErrUnknownCamera) {
		t.Errorf("OpenEdit(ghost) = %v", err)
	}
}

func TestSaveGeneratesIDAndCreates(t *testing.T) {
	e, backend, cams, _ := newEditor(true)
	e.OpenCreate()
	e.Update(func(f *Form) {
		f.Name = "Booth"
		f.RTSPURL = "rtsp://10.0.0.9/main"
	})

	id, err := e.Save(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^cam_[0-9a-f]{8}$`).MatchString(id) {
		t.Errorf("generated id %q", id)
	}
	if len(backend.created) != 1 || backend.created[0].ID != id {
		t.Errorf("created = %+v", backend.created)
	}
	if cams.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", cams.refreshes)
	}
	if _, open := e.Form(); open {
		t.Error("form must close after a successful save")
	}
}

func TestSaveKnownIDUpdatesRegardlessOfMode(t *testing.T) {
	e, backend, _, _ := newEditor(true)
	e.OpenCreate()
	e.Update(func(f *Form) {
		f.ID = "cam_stage"
		f.Name = "Stage Left"
		f.RTSPURL = "rtsp://10.0.0.5/main"
	})

	if _, err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(backend.created) != 0 {
		t.Error("known id must not be created")
	}
	if backend.updated["cam_stage"].Name != "Stage Left" {
		t.Errorf("updated = %+v", backend.updated)
	}
}

func TestSaveFailureRaisesBlockingNotice(t *testing.T) {
	e, backend, cams, n := newEditor(true)
	backend.err = errors.New("409 conflict")

	f := NewForm()
	f.Name = "Booth"
	f.RTSPURL = "rtsp://cam"
	if _, err := e.SaveForm(context.Background(), f); err == nil {
		t.Fatal("expected error")
	}
	if len(n.blocking) != 1 {
		t.Errorf("blocking notices = %v", n.blocking)
	}
	if cams.refreshes != 0 {
		t.Error("failed save must not refresh")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	e, backend, _, _ := newEditor(false)
	if err := e.Delete(context.Background(), "cam_stage"); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("Delete = %v, want ErrNotConfirmed", err)
	}
	if len(backend.deleted) != 0 {
		t.Error("declined delete reached the backend")
	}

	if err := e.Delete(Confirmed(context.Background()), "cam_stage"); err != nil {
		t.Fatalf("pre-confirmed Delete = %v", err)
	}
	if len(backend.deleted) != 1 {
		t.Error("pre-confirmed delete must skip the confirmer")
	}
}

func TestDeleteNotifiesAndRefreshes(t *testing.T) {
	backend := &fakeBackend{}
	cams := &fakeCameras{cams: map[string]models.Camera{"cam_stage": stageCamera()}}
	var deleted string
	var prompt string
	e := New(Config{
		Backend: backend,
		Cameras: cams,
		Confirm: func(_ context.Context, p string) bool {
			prompt = p
			return true
		},
		OnDeleted: func(id string) { deleted = id },
	})

	if err := e.Delete(context.Background(), "cam_stage"); err != nil {
		t.Fatal(err)
	}
	if deleted != "cam_stage" || cams.refreshes != 1 {
		t.Errorf("deleted=%q refreshes=%d", deleted, cams.refreshes)
	}
	if !strings.Contains(prompt, "Stage") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestScanNDI(t *testing.T) {
	e, backend, _, n := newEditor(true)

	backend.sources = []string{}
	res, err := e.ScanNDI(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Options) != 1 || !res.Options[0].Disabled || res.Options[0].Label != "No sources found" {
		t.Errorf("empty scan options = %+v", res.Options)
	}

	backend.sources = []string{"A (1)", "B (2)"}
	res, _ = e.ScanNDI(context.Background())
	if len(res.Options) != 3 || res.Options[0].Label != "Select NDI Source..." || res.Options[2].Value != "B (2)" {
		t.Errorf("scan options = %+v", res.Options)
	}

	backend.sourceErr = errors.New("timeout")
	res, err = e.ScanNDI(context.Background())
	if err == nil || res.ButtonLabel != ScanLabel || e.ScanLabel() != ScanLabel {
		t.Errorf("failed scan: err=%v label=%q", err, res.ButtonLabel)
	}
	if len(n.blocking) != 1 {
		t.Errorf("notices = %v", n.blocking)
	}
}
