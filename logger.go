package masker

import (
	"log/slog"

	"github.com/gogpu/masker/internal/logging"
)

// SetLogger configures the logger for masker and all its sub-packages.
// By default, masker produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by masker:
//   - [slog.LevelDebug]: transform, history and gesture diagnostics
//   - [slog.LevelInfo]: image loads
//   - [slog.LevelWarn]: load fallbacks, snapshot and encode failures
//
// Example:
//
//	masker.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by masker.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Get()
}
