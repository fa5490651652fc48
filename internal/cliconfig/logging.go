package cliconfig

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger returns the CLI console logger.
func Logger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// SetLogLevel sets the zerolog global level. Unknown levels fall back to info.
func SetLogLevel(level string) {
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || l == zerolog.NoLevel {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
}
