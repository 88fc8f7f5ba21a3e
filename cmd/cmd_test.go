package cmd

import (
	"slices"
	"testing"

	"github.com/smazurov/ptzdeck/internal/models"
)

func TestSourceOf(t *testing.T) {
	studio := "STUDIO (Cam A)"
	rtsp := "rtsp://10.0.0.5/stream1"

	tests := []struct {
		name    string
		preview models.Preview
		want    string
	}{
		{"unset", models.Preview{}, "-"},
		{"rtsp", models.Preview{Type: models.PreviewRTSP, RTSPURL: &rtsp}, "rtsp"},
		{"ndi with source", models.Preview{Type: models.PreviewNDI, NDISource: &studio}, "ndi:STUDIO (Cam A)"},
		{"ndi without source", models.Preview{Type: models.PreviewNDI}, "ndi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceOf(models.Camera{Preview: tt.preview}); got != tt.want {
				t.Errorf("sourceOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrDash(t *testing.T) {
	if got := orDash(""); got != "-" {
		t.Errorf("orDash(\"\") = %q", got)
	}
	if got := orDash("ok"); got != "ok" {
		t.Errorf("orDash(ok) = %q", got)
	}
}

func TestControlNames(t *testing.T) {
	names := controlNames()
	for _, want := range []string{"up", "down-right", "zoom-in", "stop"} {
		if !slices.Contains(names, want) {
			t.Errorf("controlNames() missing %q: %v", want, names)
		}
	}
}
