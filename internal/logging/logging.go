// Package logging builds the zerolog logger shared by the CLI and the
// discovery registry. Output goes to stderr so stdout stays parseable.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agentx-labs/emuscan/internal/branding"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Profile selects defaults for a kind of caller.
type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config controls the logger New builds.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

// EnvLogLevel returns the level override variable, e.g. EMUSCAN_LOG_LEVEL.
func EnvLogLevel() string { return branding.EnvVar("LOG_LEVEL") }

// EnvLogNoColor returns the colour override variable.
func EnvLogNoColor() string { return branding.EnvVar("LOG_NOCOLOR") }

// EnvLogTimestamp returns the timestamp override variable.
func EnvLogTimestamp() string { return branding.EnvVar("LOG_TIMESTAMP") }

// DefaultConfig returns the defaults for profile with environment overrides
// applied.
func DefaultConfig(profile Profile) Config {
	var cfg Config
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.NoColor = true
	default:
		cfg.Level = zerolog.WarnLevel
	}
	applyEnvOverrides(&cfg, os.Getenv)
	return cfg
}

// New builds a console logger writing to w. Colour is dropped when w is not
// a terminal.
func New(w io.Writer, cfg Config) zerolog.Logger {
	noColor := cfg.NoColor || !isTerminal(w)
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	if !cfg.Timestamp {
		out.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names report false.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.WarnLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.WarnLevel, false
	}
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if lvl, ok := ParseLevel(getenv(EnvLogLevel())); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(getenv(EnvLogNoColor())); ok {
		cfg.NoColor = v
	}
	if v, ok := parseBool(getenv(EnvLogTimestamp())); ok {
		cfg.Timestamp = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
