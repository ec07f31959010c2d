package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib logger that forwards to base, tagged with component.
func New(component string, base *slog.Logger) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), slog.LevelInfo)
}
