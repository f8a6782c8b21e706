// Package logger provides structured logging for the Bitreon backend.
//
// It is a thin wrapper around zerolog exposing the small surface the rest of
// the codebase uses: a named component logger, field chaining, and leveled
// output.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a named, leveled structured logger.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing JSON to w at the given level. Unknown levels
// default to info.
func New(name, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", name).Logger()
	return &Logger{zl: zl}
}

// NewDefault creates a logger for the named component at the level given by
// the LOG_LEVEL environment variable (info when unset), writing to stderr.
func NewDefault(name string) *Logger {
	return New(name, os.Getenv("LOG_LEVEL"), os.Stderr)
}

// WithField returns a logger with an additional field attached to every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().AnErr("error", err).Logger()}
}

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zl.Error().Msgf(format, args...) }
