package config

import "fmt"

// LogFormat represents the logging output format
type LogFormat string

// LogLevel represents the logging verbosity level
type LogLevel string

// Constants for LogFormat
const (
	LogFormatUnspecified LogFormat = ""
	LogFormatText        LogFormat = "text"
	LogFormatJSON        LogFormat = "json"
)

// Constants for LogLevel
const (
	LogLevelUnspecified LogLevel = ""
	LogLevelTrace       LogLevel = "trace"
	LogLevelDebug       LogLevel = "debug"
	LogLevelInfo        LogLevel = "info"
	LogLevelWarn        LogLevel = "warn"
	LogLevelError       LogLevel = "error"
)

// String returns the string representation of LogFormat
func (f LogFormat) String() string {
	return string(f)
}

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// LogFormatFromString converts a string to a LogFormat
func LogFormatFromString(format string) (LogFormat, error) {
	switch format {
	case "json":
		return LogFormatJSON, nil
	case "text", "txt":
		return LogFormatText, nil
	case "":
		return LogFormatUnspecified, nil
	default:
		return LogFormatUnspecified, fmt.Errorf("%w: %s", ErrUnknownLogFormat, format)
	}
}

// LogLevelFromString converts a string to a LogLevel
func LogLevelFromString(level string) (LogLevel, error) {
	switch level {
	case "trace":
		return LogLevelTrace, nil
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "":
		return LogLevelUnspecified, nil
	default:
		return LogLevelUnspecified, fmt.Errorf("%w: %s", ErrUnknownLogLevel, level)
	}
}
