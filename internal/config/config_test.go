package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

// testOptions mirrors the shape of Options with one field per supported kind.
type testOptions struct {
	Config string `help:"Config file path"`

	StringField string   `toml:"test.string_field" env:"TEST_STRING_FIELD"`
	BoolField   bool     `toml:"test.bool_field" env:"TEST_BOOL_FIELD"`
	IntField    int      `toml:"test.int_field" env:"TEST_INT_FIELD"`
	FloatField  float64  `toml:"test.float_field" env:"TEST_FLOAT_FIELD"`
	SliceField  []string `toml:"test.slice_field" env:"TEST_SLICE_FIELD"`

	NestedString string `toml:"nested.deep.value" env:"TEST_NESTED_VALUE"`
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ptzdeck.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeTempConfig(t, `
[test]
string_field = "hello world"
bool_field = true
int_field = 42
float_field = 0.7
slice_field = ["item1", "item2"]

[nested.deep]
value = "nested value"
`)

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.StringField != "hello world" {
		t.Errorf("StringField = %q, want 'hello world'", opts.StringField)
	}
	if !opts.BoolField {
		t.Error("BoolField = false, want true")
	}
	if opts.IntField != 42 {
		t.Errorf("IntField = %d, want 42", opts.IntField)
	}
	if opts.FloatField != 0.7 {
		t.Errorf("FloatField = %v, want 0.7", opts.FloatField)
	}
	if want := []string{"item1", "item2"}; !reflect.DeepEqual(opts.SliceField, want) {
		t.Errorf("SliceField = %v, want %v", opts.SliceField, want)
	}
	if opts.NestedString != "nested value" {
		t.Errorf("NestedString = %q, want 'nested value'", opts.NestedString)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeTempConfig(t, "[test]\nstring_field = \"toml value\"\nint_field = 100\n")
	t.Setenv(EnvPrefix+"TEST_STRING_FIELD", "env override")
	t.Setenv(EnvPrefix+"TEST_SLICE_FIELD", "a, b,c")

	opts := &testOptions{Config: path}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.StringField != "env override" {
		t.Errorf("StringField = %q, want 'env override'", opts.StringField)
	}
	if opts.IntField != 100 {
		t.Errorf("IntField = %d, want 100 from TOML", opts.IntField)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(opts.SliceField, want) {
		t.Errorf("SliceField = %v, want %v", opts.SliceField, want)
	}
}

func TestLoadConfigCLIOverridesAll(t *testing.T) {
	path := writeTempConfig(t, "[backend]\nurl = \"http://toml:8000\"\n[poll]\ncameras_ms = 9000\n")
	t.Setenv(EnvPrefix+"BACKEND_URL", "http://env:8000")

	opts := &Options{Config: path}
	cmd := &cobra.Command{Use: "ptzdeck"}
	cmd.PersistentFlags().StringVar(&opts.BackendURL, "backend-url", "http://localhost:8000", "")
	cmd.Flags().IntVar(&opts.PollCamerasMs, "poll-cameras-ms", 3000, "")
	if err := cmd.ParseFlags([]string{"--backend-url", "http://cli:8000"}); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if opts.BackendURL != "http://cli:8000" {
		t.Errorf("BackendURL = %q, want CLI value", opts.BackendURL)
	}
	if opts.PollCamerasMs != 9000 {
		t.Errorf("PollCamerasMs = %d, want TOML value 9000", opts.PollCamerasMs)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &Options{Config: filepath.Join(t.TempDir(), "absent.toml"), PollLogsMs: 2000}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("missing config file should not be an error: %v", err)
	}
	if opts.PollLogsMs != 2000 {
		t.Errorf("defaults should be untouched, got %d", opts.PollLogsMs)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "[poll\ncameras_ms = ")
	if err := LoadConfig(&Options{Config: path}, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Config":             "config",
		"LoggingLevel":       "logging-level",
		"BackendURL":         "backend-url",
		"PTZSpeedPercent":    "ptz-speed-percent",
		"LoggingAPI":         "logging-api",
		"PresetPollAttempts": "preset-poll-attempts",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetFieldValueFromString(t *testing.T) {
	var opts testOptions
	v := reflect.ValueOf(&opts).Elem()

	setFieldValueFromString(v.FieldByName("BoolField"), "true")
	setFieldValueFromString(v.FieldByName("IntField"), "not-a-number")
	setFieldValueFromString(v.FieldByName("FloatField"), "0.25")

	if !opts.BoolField {
		t.Error("BoolField not set")
	}
	if opts.IntField != 0 {
		t.Errorf("invalid int should be ignored, got %d", opts.IntField)
	}
	if opts.FloatField != 0.25 {
		t.Errorf("FloatField = %v, want 0.25", opts.FloatField)
	}
}

func TestOptionsLoggingConfig(t *testing.T) {
	opts := Options{
		LoggingLevel:  "warn",
		LoggingFormat: "json",
		LoggingFile:   "deck.log",
		LoggingPTZ:    "debug",
	}
	cfg := opts.LoggingConfig()

	if cfg.Level != "warn" || cfg.Format != "json" || cfg.File != "deck.log" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Modules["ptz"] != "debug" {
		t.Errorf("ptz level = %q, want debug", cfg.Modules["ptz"])
	}
	if !cfg.Quiet {
		t.Error("stdout should be quiet while the terminal UI runs")
	}

	opts.Headless = true
	if opts.LoggingConfig().Quiet {
		t.Error("headless mode should log to stdout")
	}
}

func TestOptionsDurationsFallBack(t *testing.T) {
	var opts Options
	if got := opts.PollCamerasInterval().Milliseconds(); got != 3000 {
		t.Errorf("PollCamerasInterval = %dms, want 3000", got)
	}
	if got := opts.PTZKeyRelease().Milliseconds(); got != 550 {
		t.Errorf("PTZKeyRelease = %dms, want 550", got)
	}
	if got := opts.PTZSpeed(); got != 0.5 {
		t.Errorf("PTZSpeed = %v, want 0.5", got)
	}

	opts.PTZSpeedPercent = 80
	if got := opts.PTZSpeed(); got != 0.8 {
		t.Errorf("PTZSpeed = %v, want 0.8", got)
	}
}
