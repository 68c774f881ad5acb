package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process logger from LoggingConfig and installs it
// as the zerolog global so packages that log through log.Logger pick up
// the same level and writer. Unknown levels fall back to info rather
// than failing startup.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	writer := loggerWriter(cfg.Format)
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", "gatherhall").
		Logger()
	log.Logger = logger
	return logger
}

// loggerWriter picks console output for local development and JSON for
// everything else. Console mode is opt-in via LOG_FORMAT=console.
func loggerWriter(format string) io.Writer {
	if strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}
