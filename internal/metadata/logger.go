package metadata

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// NewLogger builds the process logger. Logs never go to stdout because
// stdout carries result lines.
func NewLogger(w io.Writer, level string, format string) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if parsedLevel == zerolog.NoLevel {
		parsedLevel = zerolog.InfoLevel
	}

	var out io.Writer
	switch format {
	case LogFormatJSON:
		out = w
	case LogFormatConsole, "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q: must be %s or %s", format, LogFormatConsole, LogFormatJSON)
	}

	return zerolog.New(out).Level(parsedLevel).With().Timestamp().Logger(), nil
}
