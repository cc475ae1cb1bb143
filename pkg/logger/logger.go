package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// L is the application logger. Init replaces it with the configured one;
// the zero-config default writes JSON to stdout.
var L = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the global logger from LOG_LEVEL and LOG_PRETTY.
func Init() {
	level := zerolog.InfoLevel
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(s)); err == nil {
			level = parsed
		}
	}

	var out = zerolog.New(os.Stdout)
	if strings.EqualFold(os.Getenv("LOG_PRETTY"), "true") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	L = out.Level(level).With().Timestamp().Logger()
}
