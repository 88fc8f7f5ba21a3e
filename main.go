package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/ptzdeck/cmd"
	"github.com/smazurov/ptzdeck/internal/api"
	"github.com/smazurov/ptzdeck/internal/backend"
	"github.com/smazurov/ptzdeck/internal/config"
	"github.com/smazurov/ptzdeck/internal/console"
	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/logging"
	"github.com/smazurov/ptzdeck/internal/metrics/exporters"
	"github.com/smazurov/ptzdeck/internal/render"
	"github.com/smazurov/ptzdeck/internal/tui"
	"github.com/smazurov/ptzdeck/internal/version"
)

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *config.Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.LoggingConfig())
		logger := logging.GetLogger("main")
		logger.Info("Starting ptzdeck", "version", version.Get().Version, "backend", opts.BackendURL)

		// Create event bus for in-process event handling
		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Seq:        entry.Seq,
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		client, err := backend.New(backend.Config{
			BaseURL: opts.BackendURL,
			Timeout: opts.BackendTimeout(),
			Logger:  logging.GetLogger("backend"),
		})
		if err != nil {
			logger.Error("Invalid backend configuration", "error", err)
			os.Exit(1)
		}

		deck := console.New(consoleConfig(opts, client, eventBus))

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			CORSOrigin:   opts.CORSOrigin,
			Console:      deck,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		watcher := config.NewWatcher(opts.Config, config.Reloader(*opts, cli.Root()), logging.GetLogger("config"))
		watcher.OnReload(func(next config.Options) {
			logging.Initialize(next.LoggingConfig())
			deck.Poller().SetIntervals(next.PollCamerasInterval(), next.PollLogsInterval())
			deck.Logs().SetLimit(next.PollLogsLimit)
			logger.Info("Applied reloaded config",
				"poll_cameras", next.PollCamerasInterval(),
				"poll_logs", next.PollLogsInterval(),
				"logging_level", next.LoggingLevel)
		})

		ctx, cancel := context.WithCancel(context.Background())

		var once sync.Once
		shutdown := func() {
			once.Do(func() {
				logger.Info("Shutting down")
				cancel()
				if stopErr := server.Stop(); stopErr != nil {
					logger.Error("Error stopping API server", "error", stopErr)
				}
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Debug("Error stopping config watcher", "error", stopErr)
				}
				deck.Stop()
				logging.SetLogCallback(nil)
				if closeErr := logging.Close(); closeErr != nil {
					fmt.Fprintln(os.Stderr, "closing log file:", closeErr)
				}
			})
		}

		hooks.OnStart(func() {
			if startErr := watcher.Start(); startErr != nil {
				logger.Warn("Config hot reload disabled", "path", opts.Config, "error", startErr)
			}
			deck.Start(ctx)

			if opts.Headless {
				if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
					logger.Warn("Failed to notify systemd", "error", notifyErr)
				} else if sent {
					logger.Debug("Notified systemd readiness")
				}
				if startErr := server.Start(opts.Listen); startErr != nil {
					logger.Error("Failed to start API server", "error", startErr)
					os.Exit(1)
				}
				return
			}

			go func() {
				if startErr := server.Start(opts.Listen); startErr != nil {
					logger.Error("API server stopped", "error", startErr)
				}
			}()

			model := tui.New(ctx, tui.Options{Console: deck, KeyRelease: opts.PTZKeyRelease()})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
			if _, runErr := program.Run(); runErr != nil {
				logger.Error("Terminal UI failed", "error", runErr)
			}
			model.Close()
			shutdown()
		})

		hooks.OnStop(shutdown)
	})

	cli.Root().Use = "ptzdeck"
	cli.Root().Short = "Operator console for PTZ cameras"
	cli.Root().Version = version.Get().Version

	cli.Root().AddCommand(
		cmd.CreateCamerasCmd(),
		cmd.CreatePTZCmd(),
		cmd.CreatePresetsCmd(),
		cmd.CreateNDICmd(),
		cmd.CreateStatusCmd(),
	)

	// Run the CLI
	cli.Run()
}

// consoleConfig maps the flat options onto the console components.
func consoleConfig(opts *config.Options, client *backend.Client, bus *events.Bus) console.Config {
	return console.Config{
		Backend:        client,
		Resolve:        client.ResolveURL,
		CameraPoll:     opts.PollCamerasInterval(),
		LogPoll:        opts.PollLogsInterval(),
		LogLimit:       opts.PollLogsLimit,
		PTZSpeed:       opts.PTZSpeed(),
		PTZTimeout:     opts.PTZTimeout(),
		PresetPoll:     opts.PresetPollInterval(),
		PresetAttempts: opts.PresetPollAttempts,
		Players: render.PlayerOptions{
			SnapshotRetry: opts.SnapshotRetry(),
			Segmented: render.SegmentedConfig{
				Retries:      opts.PreviewManifestRetries,
				Poll:         opts.ManifestPoll(),
				MaxBandwidth: uint32(max(opts.PreviewMaxBandwidth, 0)),
				Autoplay:     opts.PreviewAutoplay,
			},
		},
		Bus: bus,
	}
}
