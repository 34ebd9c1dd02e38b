package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Release mode writes JSON, anything else a console stream.
func NewLogger(release bool) zerolog.Logger {
	return newLogger(os.Stdout, release)
}

func newLogger(out io.Writer, release bool) zerolog.Logger {
	if release {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return zerolog.New(out).With().Timestamp().Str("service", "homepro-server").Logger()
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger()
}
