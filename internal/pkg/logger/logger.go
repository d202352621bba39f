package logger

import (
	"io"
	"os"

	"github.com/ciricc/btc-address-indexer/config"
	"github.com/rs/zerolog"
)

func NewLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("serviceName", cfg.Name).
		Str("ver", cfg.Version).
		Str("env", cfg.Environment).
		Caller().
		Logger()
}
