package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-doctoolkit/internal/config"
)

// newLogger builds the process logger. Level and format are validated by
// config.Validate; unknown levels fall back to info.
func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if strings.ToLower(cfg.Format) != config.LogFormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
