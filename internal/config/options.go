package config

import (
	"time"

	"github.com/smazurov/ptzdeck/internal/logging"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"ptzdeck.toml"`

	// Backend settings
	BackendURL       string `help:"Camera backend base URL" short:"b" default:"http://localhost:8000/api" toml:"backend.url" env:"BACKEND_URL"`
	BackendTimeoutMs int    `help:"Backend request timeout in milliseconds" default:"5000" toml:"backend.timeout_ms" env:"BACKEND_TIMEOUT_MS"`

	// Poll settings
	PollCamerasMs int `help:"Camera list and health poll interval in milliseconds" default:"3000" toml:"poll.cameras_ms" env:"POLL_CAMERAS_MS"`
	PollLogsMs    int `help:"Log drawer poll interval in milliseconds" default:"2000" toml:"poll.logs_ms" env:"POLL_LOGS_MS"`
	PollLogsLimit int `help:"Number of backend log entries to fetch" default:"100" toml:"poll.logs_limit" env:"POLL_LOGS_LIMIT"`

	// Preset settings
	PresetPollMs       int `help:"Interval between preset visibility checks after saving" default:"1000" toml:"presets.poll_ms" env:"PRESETS_POLL_MS"`
	PresetPollAttempts int `help:"Preset visibility checks before giving up" default:"5" toml:"presets.poll_attempts" env:"PRESETS_POLL_ATTEMPTS"`

	// PTZ settings
	PTZSpeedPercent int `help:"Initial PTZ speed in percent (10-100)" default:"50" toml:"ptz.speed_percent" env:"PTZ_SPEED_PERCENT"`
	PTZKeyReleaseMs int `help:"Hold timeout after which a terminal key counts as released" default:"550" toml:"ptz.key_release_ms" env:"PTZ_KEY_RELEASE_MS"`
	PTZTimeoutMs    int `help:"Timeout for a single PTZ request in milliseconds" default:"2000" toml:"ptz.timeout_ms" env:"PTZ_TIMEOUT_MS"`

	// Preview settings
	PreviewAutoplay        bool `help:"Start segmented previews without operator interaction" default:"true" toml:"preview.autoplay" env:"PREVIEW_AUTOPLAY"`
	PreviewSnapshotRetryMs int  `help:"Delay before a failed MJPEG preview reconnects" default:"2000" toml:"preview.snapshot_retry_ms" env:"PREVIEW_SNAPSHOT_RETRY_MS"`
	PreviewManifestRetries int  `help:"Consecutive manifest network failures before a preview is marked fatal" default:"3" toml:"preview.manifest_retries" env:"PREVIEW_MANIFEST_RETRIES"`
	PreviewManifestPollMs  int  `help:"Manifest poll interval when the playlist does not advertise one" default:"2000" toml:"preview.manifest_poll_ms" env:"PREVIEW_MANIFEST_POLL_MS"`
	PreviewMaxBandwidth    int  `help:"Highest variant bandwidth to select from a master playlist (0 = no cap)" default:"0" toml:"preview.max_bandwidth" env:"PREVIEW_MAX_BANDWIDTH"`

	// Server settings
	Listen     string `help:"Local control API address" short:"l" default:":8091" toml:"server.listen" env:"SERVER_LISTEN"`
	Headless   bool   `help:"Run without the terminal UI" default:"false" toml:"server.headless" env:"SERVER_HEADLESS"`
	CORSOrigin string `help:"Access-Control-Allow-Origin for the control API" default:"*" toml:"server.cors_origin" env:"SERVER_CORS_ORIGIN"`

	// Auth settings
	AuthUsername string `help:"Basic auth username (empty disables auth)" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingFile    string `help:"Log file (used while the terminal UI is active)" default:"ptzdeck.log" toml:"logging.file" env:"LOGGING_FILE"`
	LoggingBackend string `help:"Backend client logging level" default:"info" toml:"logging.backend" env:"LOGGING_BACKEND"`
	LoggingPoller  string `help:"Poller logging level" default:"info" toml:"logging.poller" env:"LOGGING_POLLER"`
	LoggingRender  string `help:"Preview renderer logging level" default:"info" toml:"logging.render" env:"LOGGING_RENDER"`
	LoggingPTZ     string `help:"PTZ logging level" default:"info" toml:"logging.ptz" env:"LOGGING_PTZ"`
	LoggingPresets string `help:"Presets logging level" default:"info" toml:"logging.presets" env:"LOGGING_PRESETS"`
	LoggingEditor  string `help:"Camera editor logging level" default:"info" toml:"logging.editor" env:"LOGGING_EDITOR"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

// LoggingConfig builds the logging configuration from the flat options.
func (o *Options) LoggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		File:   o.LoggingFile,
		Quiet:  !o.Headless,
		Modules: map[string]string{
			"backend": o.LoggingBackend,
			"store":   o.LoggingBackend,
			"poller":  o.LoggingPoller,
			"render":  o.LoggingRender,
			"ptz":     o.LoggingPTZ,
			"presets": o.LoggingPresets,
			"editor":  o.LoggingEditor,
			"api":     o.LoggingAPI,
		},
	}
}

// BackendTimeout returns the backend request timeout.
func (o *Options) BackendTimeout() time.Duration { return millis(o.BackendTimeoutMs, 5*time.Second) }

// PollCamerasInterval returns the camera list poll interval.
func (o *Options) PollCamerasInterval() time.Duration {
	return millis(o.PollCamerasMs, 3*time.Second)
}

// PollLogsInterval returns the log drawer poll interval.
func (o *Options) PollLogsInterval() time.Duration { return millis(o.PollLogsMs, 2*time.Second) }

// PresetPollInterval returns the delay between preset visibility checks.
func (o *Options) PresetPollInterval() time.Duration { return millis(o.PresetPollMs, time.Second) }

// PTZKeyRelease returns the synthesized key-up timeout.
func (o *Options) PTZKeyRelease() time.Duration {
	return millis(o.PTZKeyReleaseMs, 550*time.Millisecond)
}

// PTZTimeout returns the per-request PTZ timeout.
func (o *Options) PTZTimeout() time.Duration { return millis(o.PTZTimeoutMs, 2*time.Second) }

// PTZSpeed returns the initial slider position as a fraction.
func (o *Options) PTZSpeed() float64 {
	if o.PTZSpeedPercent <= 0 {
		return 0.5
	}
	return float64(o.PTZSpeedPercent) / 100
}

// SnapshotRetry returns the MJPEG reconnect delay.
func (o *Options) SnapshotRetry() time.Duration {
	return millis(o.PreviewSnapshotRetryMs, 2*time.Second)
}

// ManifestPoll returns the fallback HLS manifest poll interval.
func (o *Options) ManifestPoll() time.Duration {
	return millis(o.PreviewManifestPollMs, 2*time.Second)
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
