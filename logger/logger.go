// Package logger constructs the zerolog loggers used by the manna binaries.
package logger

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnsupportedFormat is returned for a format other than json or console.
var ErrUnsupportedFormat = errors.New("unsupported log format")

// New constructs a logger writing to w at the given level. format is
// "json" or "console".
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	default:
		return zerolog.Logger{}, ErrUnsupportedFormat
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}
