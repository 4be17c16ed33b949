package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw    string
		want   zerolog.Level
		wantOK bool
	}{
		{"", zerolog.WarnLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" INFO ", zerolog.InfoLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.WarnLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	vars := map[string]string{
		"EMUSCAN_LOG_LEVEL":     "info",
		"EMUSCAN_LOG_NOCOLOR":   "true",
		"EMUSCAN_LOG_TIMESTAMP": "not-a-bool",
	}
	cfg := Config{Level: zerolog.ErrorLevel}
	applyEnvOverrides(&cfg, func(k string) string { return vars[k] })

	if cfg.Level != zerolog.InfoLevel {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
	if !cfg.NoColor {
		t.Error("NoColor = false, want true")
	}
	if cfg.Timestamp {
		t.Error("invalid bool should leave Timestamp unchanged")
	}
}

func TestDefaultConfigRespectsEnv(t *testing.T) {
	t.Setenv("EMUSCAN_LOG_LEVEL", "debug")
	cfg := DefaultConfig(ProfileRuntime)
	if cfg.Level != zerolog.DebugLevel {
		t.Errorf("Level = %v, want debug", cfg.Level)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: zerolog.InfoLevel})

	log.Debug().Msg("hidden")
	log.Info().Str("path", "/tmp/pid_1.ini").Msg("removed stale descriptor")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked: %q", out)
	}
	if !strings.Contains(out, "removed stale descriptor") || !strings.Contains(out, "pid_1.ini") {
		t.Errorf("info message missing: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes written to a non-terminal: %q", out)
	}
}
