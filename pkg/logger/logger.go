package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides structured logging functionality
type Logger struct {
	zl       zerolog.Logger
	verbose  bool
	progress io.Writer
}

// NewLogger creates a console logger on stderr with the given level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return NewLoggerWithWriter(out, level, verbose)
}

// NewLoggerWithWriter writes log events to w. Progress lines go to stdout.
func NewLoggerWithWriter(w io.Writer, level string, verbose bool) *Logger {
	return &Logger{
		zl:       zerolog.New(w).Level(parseLogLevel(level)).With().Timestamp().Logger(),
		verbose:  verbose,
		progress: os.Stdout,
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), progress: io.Discard}
}

// WithProgressWriter redirects Progress and ProgressAlways output
func (l *Logger) WithProgressWriter(w io.Writer) *Logger {
	cp := *l
	cp.progress = w
	return &cp
}

// With returns a child logger carrying a fixed field
func (l *Logger) With(key string, value interface{}) *Logger {
	cp := *l
	cp.zl = l.zl.With().Interface(key, value).Logger()
	return &cp
}

// Debug logs debug information (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs informational messages (only in verbose mode)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.verbose {
		l.zl.Info().Msgf(format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// ProgressAlways prints milestones users should see regardless of verbose mode
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	fmt.Fprintf(l.progress, "%s %s\n", emoji, fmt.Sprintf(format, args...))
}

// Progress prints step-by-step details (only in verbose mode)
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		fmt.Fprintf(l.progress, "%s %s\n", emoji, fmt.Sprintf(format, args...))
	}
}

// Fatal logs a fatal error and exits the program
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.zl.Fatal().Msgf(format, args...)
}

// parseLogLevel converts string level to a zerolog level
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
