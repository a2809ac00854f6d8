package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the service logger. Console output goes to stderr so
// structured summaries on stdout stay machine-readable.
func NewLogger(service string, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
