// Package util provides low-level helpers shared by all other packages.
package util

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// Logger writes levelled diagnostics to stderr with optional timestamps
// and level prefixes.  Chat traffic never goes through it; that is the
// renderer's job.
type Logger struct {
	level      LogLevel
	mu         sync.RWMutex
	output     io.Writer
	timestamps bool
	zl         zerolog.Logger
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	l := &Logger{
		level:      LogLevel(verbosity),
		output:     os.Stderr,
		timestamps: verbosity >= 3, // auto-enable timestamps in debug mode
	}
	l.rebuild()
	return l
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) {
	l.mu.Lock()
	l.timestamps = on
	l.rebuild()
	l.mu.Unlock()
}

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.output = w
	l.rebuild()
	l.mu.Unlock()
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	l.get().Info().Msgf(format, args...)
}

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	l.get().Warn().Msgf(format, args...)
}

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	l.get().Debug().Msgf(format, args...)
}

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	l.get().Trace().Msgf(format, args...)
}

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.get().Error().Msgf(format, args...)
}

func (l *Logger) get() *zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	zl := l.zl
	return &zl
}

// rebuild recreates the zerolog pipeline.  Callers hold l.mu.
func (l *Logger) rebuild() {
	parts := []string{zerolog.LevelFieldName, zerolog.MessageFieldName}
	if l.timestamps {
		parts = append([]string{zerolog.TimestampFieldName}, parts...)
	}
	cw := zerolog.ConsoleWriter{
		Out:         zerolog.SyncWriter(l.output),
		NoColor:     true,
		TimeFormat:  "15:04:05",
		FormatLevel: formatLevel,
		PartsOrder:  parts,
	}
	zl := zerolog.New(cw).Level(zerologLevel(l.level))
	if l.timestamps {
		zl = zl.With().Timestamp().Logger()
	}
	l.zl = zl
}

// zerologLevel maps verbosity onto zerolog's scale.  Verbose output uses
// zerolog's debug level and debug output its trace level.
func zerologLevel(v LogLevel) zerolog.Level {
	switch {
	case v <= LogQuiet:
		return zerolog.ErrorLevel
	case v == LogNormal:
		return zerolog.InfoLevel
	case v == LogVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func formatLevel(i interface{}) string {
	s, _ := i.(string)
	switch s {
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
		return "[ERR]"
	case zerolog.LevelWarnValue:
		return "[WRN]"
	case zerolog.LevelInfoValue:
		return "[INF]"
	case zerolog.LevelDebugValue:
		return "[VRB]"
	case zerolog.LevelTraceValue:
		return "[DBG]"
	default:
		return "[???]"
	}
}

// Since formats the time elapsed since t for log lines.
func Since(t time.Time) string {
	return time.Since(t).Round(time.Millisecond).String()
}
