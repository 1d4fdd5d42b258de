package wl

import "github.com/ehrlich-b/go-wl/internal/logging"

// Logger is the leveled logger used throughout the runtime.
type Logger = logging.Logger

// LogConfig holds logging configuration.
type LogConfig = logging.Config

// LogLevel re-exports the logging levels.
type LogLevel = logging.LogLevel

const (
	LevelDebug = logging.LevelDebug
	LevelInfo  = logging.LevelInfo
	LevelWarn  = logging.LevelWarn
	LevelError = logging.LevelError
)

// NewLogger creates a new leveled logger; a nil config uses Info level
// on stderr (Debug level when WAYLAND_DEBUG=1).
func NewLogger(config *LogConfig) *Logger {
	return logging.NewLogger(config)
}

// SetDefaultLogger replaces the process-wide default logger used by
// components constructed without an explicit one.
func SetDefaultLogger(l *Logger) {
	logging.SetDefault(l)
}
