package version

import (
	"strings"
	"testing"
)

func TestShortRevision(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc123", "abc123"},
		{"0123456789abcdef0123", "0123456789ab"},
	}
	for _, tt := range tests {
		if got := shortRevision(tt.in); got != tt.want {
			t.Errorf("shortRevision(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserAgentAndTitle(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "1.4.0"

	if got := UserAgent(); got != "ptzdeck/1.4.0" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := Title(); !strings.HasPrefix(got, "ptzdeck 1.4.0") {
		t.Errorf("Title() = %q", got)
	}
	if got := Get(); got.Version != "1.4.0" || got.Platform == "" {
		t.Errorf("Get() = %+v", got)
	}
}
