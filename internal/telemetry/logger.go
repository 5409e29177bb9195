package telemetry

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process logger. format is "console" (human readable,
// the default) or "json". The result is also installed as the zerolog
// global logger.
func NewLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		var err error
		if lvl, err = zerolog.ParseLevel(strings.ToLower(s)); err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: want console or json", format)
	}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Str("app", "lrsd").Logger()
	log.Logger = logger
	return logger, nil
}
