// Package telemetry configures structured logging for the widget consumer.
package telemetry

import (
	"log/slog"
	"os"
)

// LogLevel returns the log level from the LOG_LEVEL environment variable.
// Recognised values: DEBUG, INFO, WARN, ERROR. Default: INFO.
func LogLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger initializes the process-wide logger and returns it.
//
// The output format is controlled by LOG_FORMAT:
//   - "json" (default): JSON lines for production
//   - "text": human-readable output for development
func SetupLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: LogLevel() == slog.LevelDebug,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
