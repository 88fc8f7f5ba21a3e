// Package editor implements the add/edit camera form and its persistence.
package editor

import (
	"errors"
	"strings"

	"github.com/smazurov/ptzdeck/internal/models"
)

// Mode tells whether the form was opened to add or to edit a camera.
type Mode string

// Form modes.
const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Form field names.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldIP         = "ip"
	FieldONVIFPort  = "onvif_port"
	FieldUsername   = "username"
	FieldPassword   = "password"
	FieldSourceType = "source_type"
	FieldRTSPURL    = "rtsp_url"
	FieldNDISource  = "ndi_source"
)

const defaultONVIFPort = 80

// Form is the shared add/edit camera form.
type Form struct {
	Mode       Mode               `json:"mode,omitempty"`
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	IP         string             `json:"ip,omitempty"`
	ONVIFPort  int                `json:"onvif_port"`
	Username   string             `json:"username,omitempty"`
	Password   string             `json:"password,omitempty"`
	SourceType models.PreviewType `json:"source_type"`
	RTSPURL    string             `json:"rtsp_url,omitempty"`
	NDISource  string             `json:"ndi_source,omitempty"`
}

// NewForm returns an empty create form.
func NewForm() Form {
	return Form{Mode: ModeCreate, ONVIFPort: defaultONVIFPort, SourceType: models.PreviewRTSP}
}

// FormFromCamera pre-fills an edit form. The password is never pre-filled.
func FormFromCamera(cam models.Camera) Form {
	f := Form{
		Mode:       ModeEdit,
		ID:         cam.ID,
		Name:       cam.Name,
		IP:         cam.IP,
		ONVIFPort:  cam.ONVIFPort,
		Username:   cam.Username,
		SourceType: models.PreviewRTSP,
	}
	if cam.Preview.Type == models.PreviewNDI {
		f.SourceType = models.PreviewNDI
	}
	if cam.Preview.RTSPURL != nil {
		f.RTSPURL = *cam.Preview.RTSPURL
	}
	if cam.Preview.NDISource != nil {
		f.NDISource = *cam.Preview.NDISource
	}
	return f
}

// VisibleFields lists the fields shown for the selected source type.
func (f Form) VisibleFields() []string {
	fields := []string{FieldID, FieldName, FieldIP, FieldONVIFPort, FieldUsername, FieldPassword, FieldSourceType}
	if f.SourceType == models.PreviewNDI {
		return append(fields, FieldNDISource)
	}
	return append(fields, FieldRTSPURL)
}

// FieldError is one invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the form and joins every field error.
func (f Form) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, &FieldError{FieldName, "name is required"})
	}
	if f.ONVIFPort < 1 || f.ONVIFPort > 65535 {
		errs = append(errs, &FieldError{FieldONVIFPort, "port must be between 1 and 65535"})
	}
	switch f.SourceType {
	case models.PreviewRTSP, "":
		if strings.TrimSpace(f.RTSPURL) == "" {
			errs = append(errs, &FieldError{FieldRTSPURL, "RTSP url is required"})
		}
	case models.PreviewNDI:
		if strings.TrimSpace(f.NDISource) == "" {
			errs = append(errs, &FieldError{FieldNDISource, "select an NDI source"})
		}
	default:
		errs = append(errs, &FieldError{FieldSourceType, "source type must be rtsp or ndi"})
	}
	return errors.Join(errs...)
}

// FieldErrors extracts the field errors from a Validate result.
func FieldErrors(err error) []FieldError {
	var out []FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		out = append(out, *fe)
	}
	return out
}

// Payload builds the request body. Only the active source is sent; the other
// is null.
func (f Form) Payload(id string) models.CameraInput {
	in := models.CameraInput{
		ID:        id,
		Name:      strings.TrimSpace(f.Name),
		IP:        strings.TrimSpace(f.IP),
		ONVIFPort: f.ONVIFPort,
		Username:  f.Username,
		Password:  f.Password,
	}
	if f.SourceType == models.PreviewNDI {
		in.Preview = models.Preview{Type: models.PreviewNDI, NDISource: models.String(f.NDISource)}
	} else {
		in.Preview = models.Preview{Type: models.PreviewRTSP, RTSPURL: models.String(strings.TrimSpace(f.RTSPURL))}
	}
	return in
}
