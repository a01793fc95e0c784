package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithComponent returns a logger with the component field attached.
// Use this for logging within a single subsystem.
func WithComponent(component string) *slog.Logger {
	return slog.With("component", component)
}

// WithInteraction returns a logger with interaction context fields
// attached. Use this for all logging within a command-handling cycle.
func WithInteraction(logger *slog.Logger, mode, command string) *slog.Logger {
	return logger.With(
		"mode", mode,
		"command", command,
	)
}
