// Package logging configures the process-wide slog handlers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupHandlerText configures a text slog handler with the provided writer
// and log level. The "trace" level enables caller reporting on top of debug.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	lvl, isTrace := parseLevel(logLevel)
	charmLevel := log.InfoLevel
	switch lvl {
	case slog.LevelDebug:
		charmLevel = log.DebugLevel
	case slog.LevelWarn:
		charmLevel = log.WarnLevel
	case slog.LevelError:
		charmLevel = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		ReportTimestamp: lvl <= slog.LevelDebug,
		ReportCaller:    isTrace,
		Level:           charmLevel,
	})
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer
// and log level.
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	lvl, isTrace := parseLevel(logLevel)
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: isTrace,
	})
}

// SetupLogger installs a text handler at the given level as the default
// logger.
func SetupLogger(logLevel string, writer io.Writer) {
	slog.SetDefault(slog.New(SetupHandlerText(logLevel, writer)))
}

// parseLevel maps a level name to a slog level. Unknown names fall back to
// info. The second return reports the "trace" pseudo-level.
func parseLevel(logLevel string) (slog.Level, bool) {
	switch strings.ToLower(logLevel) {
	case "trace":
		return slog.LevelDebug, true
	case "debug":
		return slog.LevelDebug, false
	case "warn", "warning":
		return slog.LevelWarn, false
	case "error":
		return slog.LevelError, false
	default:
		return slog.LevelInfo, false
	}
}
