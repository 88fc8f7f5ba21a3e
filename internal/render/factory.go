package render

import (
	"log/slog"
	"time"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/models"
)

// Factory creates the player for a camera and its resolved stream URL.
type Factory interface {
	NewPlayer(cam models.Camera, streamURL string) Player
}

// MediaSource is what the default players need from the backend client.
type MediaSource interface {
	StreamOpener
	ManifestFetcher
}

// PlayerOptions configures the default factory.
type PlayerOptions struct {
	SnapshotRetry time.Duration
	Segmented     SegmentedConfig
}

// DefaultFactory builds offline, snapshot and segmented players.
type DefaultFactory struct {
	media  MediaSource
	opts   PlayerOptions
	bus    *events.Bus
	logger *slog.Logger
}

// NewFactory creates the default player factory.
func NewFactory(media MediaSource, opts PlayerOptions, bus *events.Bus, logger *slog.Logger) *DefaultFactory {
	return &DefaultFactory{media: media, opts: opts, bus: bus, logger: logger}
}

// NewPlayer implements Factory.
func (f *DefaultFactory) NewPlayer(cam models.Camera, streamURL string) Player {
	switch Classify(streamURL) {
	case StrategySnapshot:
		return NewSnapshotPlayer(cam.ID, streamURL, f.media, f.opts.SnapshotRetry, f.bus, f.logger)
	case StrategySegmented:
		return NewSegmentedPlayer(cam.ID, streamURL, f.media, f.opts.Segmented, f.bus, f.logger)
	default:
		return NewOfflinePlayer(cam.ID, f.bus, f.logger)
	}
}
