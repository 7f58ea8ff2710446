package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
	if _, ok := ParseLevel(""); ok {
		t.Fatalf("expected empty level to be unset")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogBypass, "not-a-bool")

	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("unexpected level: %v", cfg.Level)
	}
	if cfg.Timestamp {
		t.Fatalf("expected timestamp disabled")
	}
	if !cfg.NoColor {
		t.Fatalf("expected no color")
	}
	if cfg.Bypass {
		t.Fatalf("invalid bool should leave bypass unset")
	}
}

func TestSetupBypassWritesJSON(t *testing.T) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	Setup(Config{Level: zerolog.InfoLevel, Bypass: true, Out: &buf})
	log.Debug().Msg("hidden")
	log.Info().Str("path", "a.path").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"path":"a.path"`) || !strings.Contains(out, `"message":"visible"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
