// README: zerolog logger construction from logging config.
package infra

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"caddy/internal/config"
)

func NewLogger(cfg config.LoggingConfig, service string) *zerolog.Logger {
	return newLogger(cfg, service, os.Stdout)
}

func newLogger(cfg config.LoggingConfig, service string, out io.Writer) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := out
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", service).Logger()
	return &logger
}
