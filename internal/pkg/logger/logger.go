package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps zerolog.Logger with convenience methods
type Logger struct {
	logger zerolog.Logger
}

type options struct {
	out   io.Writer
	level string
}

// Option customizes a logger built by New
type Option func(*options)

// WithOutput writes log lines to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLevel overrides the environment's default level ("debug", "info", "warn", ...).
// Unknown or empty levels are ignored.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = level
	}
}

// New creates a new logger instance based on environment.
// Development gets pretty console output at debug level, everything else JSON at info.
func New(env string, opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	var logger zerolog.Logger
	level := zerolog.InfoLevel

	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        o.out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
		level = zerolog.DebugLevel
	} else {
		logger = zerolog.New(o.out).With().Timestamp().Caller().Logger()
	}

	if o.level != "" {
		if parsed, err := zerolog.ParseLevel(o.level); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}

	return &Logger{logger: logger.Level(level)}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...any) {
	l.logger.Debug().Msgf(format, v...)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...any) {
	l.logger.Info().Msgf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...any) {
	l.logger.Warn().Msgf(format, v...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(err error, format string, v ...any) {
	l.logger.Error().Err(err).Msgf(format, v...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, err error) {
	l.logger.Fatal().Err(err).Msg(msg)
}

// Fatalf logs a formatted fatal message and exits
func (l *Logger) Fatalf(err error, format string, v ...any) {
	l.logger.Fatal().Err(err).Msgf(format, v...)
}

// With returns a new logger with an additional context field
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithFields returns a new logger with multiple context fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return &Logger{logger: l.logger.With().Fields(fields).Logger()}
}

// GetZerologLogger returns the underlying zerolog.Logger for advanced usage
func (l *Logger) GetZerologLogger() *zerolog.Logger {
	return &l.logger
}

// SetGlobalLogger routes the zerolog global logger (used by libraries logging via zerolog/log) through l
func SetGlobalLogger(l *Logger) {
	log.Logger = l.logger
}
