// Package logging provides leveled, component-prefixed logging backed by zap.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides printf-style leveled logging for one component.
type Logger struct {
	s *zap.SugaredLogger
}

var (
	defaultLogger *Logger
	once          sync.Once
	atomicLevel   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// GetLogger returns the process-wide default logger, initializing it on
// first use from the LOG_LEVEL and LOG_FORMAT environment variables.
func GetLogger() *Logger {
	once.Do(func() {
		if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
			SetLevel(lvl)
		}
		defaultLogger = newLogger(os.Getenv("LOG_FORMAT"))
	})
	return defaultLogger
}

// newLogger builds the zap backend. The level is shared through a single
// atomic level so later SetLevel calls affect every derived logger.
func newLogger(format string) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), atomicLevel)
	return &Logger{s: zap.New(core).Sugar()}
}

// SetLevel sets the logging level from its string form
// (error, warn, info, debug). Unknown values are ignored.
func SetLevel(level string) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return
	}
	atomicLevel.SetLevel(parsed)
}

// WithPrefix creates a new logger scoped to the given component name.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{s: l.s.Named(prefix)}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.s.Errorf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.s.Warnf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.s.Infof(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.s.Debugf(format, args...)
}

// Trace logs very detailed diagnostics. zap has no level below debug, so
// trace messages share the debug level.
func (l *Logger) Trace(format string, args ...interface{}) {
	l.s.Debugf(format, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.s.Sync()
}
