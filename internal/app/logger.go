package app

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// ZeroLogger tags every entry with its component on top of a zerolog logger.
type ZeroLogger struct{ log zerolog.Logger }

func NewZeroLogger(log zerolog.Logger) ZeroLogger { return ZeroLogger{log: log} }

// NewFileLogger writes timestamped JSON lines to w.
func NewFileLogger(w io.Writer) ZeroLogger {
	return ZeroLogger{log: zerolog.New(w).With().Timestamp().Logger()}
}

func (l ZeroLogger) Infof(component string, format string, args ...interface{}) {
	l.log.Info().Str("component", component).Msgf(format, args...)
}

func (l ZeroLogger) Errorf(component string, format string, args ...interface{}) {
	l.log.Error().Str("component", component).Msgf(format, args...)
}

// Zerolog exposes the underlying logger for packages that log structured fields.
func (l ZeroLogger) Zerolog() zerolog.Logger { return l.log }
