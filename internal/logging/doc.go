// Package logging provides structured logging with per-module log levels.
//
// Records fan out to stdout (suppressed while the terminal UI is running),
// an optional log file, the systemd journal when present, and an in-memory
// ring buffer that backs the console log drawer and the /api/events stream.
//
// Initialize once at startup and again on config reload:
//
//	logging.Initialize(logging.Config{
//		Level:   "info",
//		Format:  "text",
//		File:    "ptzdeck.log",
//		Modules: map[string]string{"ptz": "debug"},
//	})
//
// Then fetch a module logger:
//
//	logger := logging.GetLogger("poller")
//	logger.Info("Camera list refreshed", "count", 3)
package logging
