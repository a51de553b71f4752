// Package logging provides a thin leveled logger used throughout uberpack.
// The logger is passed explicitly into the pipeline so that runs remain
// independently testable; there is no package-level default.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	LogLevelError = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelDebug
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	Level  int
	Format string
}

type Logger struct {
	logger zerolog.Logger
}

func NewLogger(c Config) *Logger {
	return newLogger(c, os.Stderr)
}

// NewLoggerWithWriter is used by tests to capture output.
func NewLoggerWithWriter(c Config, w io.Writer) *Logger {
	return newLogger(c, w)
}

func newLogger(c Config, w io.Writer) *Logger {
	var out io.Writer = w
	if c.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	}
	return &Logger{
		logger: zerolog.New(out).Level(zerologLevel(c.Level)).With().Timestamp().Logger(),
	}
}

func (l *Logger) Debugf(f string, a ...any) {
	l.logger.Debug().Msg(fmt.Sprintf(f, a...))
}

func (l *Logger) Infof(f string, a ...any) {
	l.logger.Info().Msg(fmt.Sprintf(f, a...))
}

func (l *Logger) Warnf(f string, a ...any) {
	l.logger.Warn().Msg(fmt.Sprintf(f, a...))
}

func (l *Logger) Errorf(f string, a ...any) {
	l.logger.Error().Msg(fmt.Sprintf(f, a...))
}

func zerologLevel(level int) zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
