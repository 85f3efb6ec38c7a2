// Package logging builds the structured loggers handed to every component.
//
// Loggers are zerolog values passed through constructors and options;
// nothing in the module logs through a package level logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const filePermission = 0o664

// Format selects the output encoding.
type Format string

// Output formats.
const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config configures a logger.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format is console (human readable) or json.
	Format Format
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Path, when set, appends logs to the file instead of Output.
	Path string
}

// ParseLevel parses a level name. Unknown names yield info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger from cfg. The returned closer releases the log file
// when Path is set and is a no-op otherwise.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		out, closer = zerolog.SyncWriter(f), f
	}
	if cfg.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.Path != ""}
	}
	logger := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return logger, closer, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger { return zerolog.Nop() }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
