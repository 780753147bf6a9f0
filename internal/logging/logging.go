package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes the process logger on stderr. format can be "text"
// (human-friendly console) or "json" (structured).
func Setup(format string) zerolog.Logger {
	return New(format, os.Stderr)
}

// New builds a logger writing to out. Every line carries the service name so
// feed runs can be picked out of shared batch-host logs.
func New(format string, out io.Writer) zerolog.Logger {
	if format == "text" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "accumfeed").Logger()
}
