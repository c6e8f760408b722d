package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/tomz197/frogduel/internal/session"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	checks := []struct {
		name      string
		got, want any
	}{
		{"log level", cfg.LogLevel, slog.LevelInfo},
		{"countdown", cfg.Round.Countdown, 3 * time.Second},
		{"reaction delay", cfg.Round.ReactionDelay, 2 * time.Second},
		{"zone radius", cfg.Zone.Radius, 6.0},
		{"required", cfg.Opportunity.Required, 2},
		{"window", cfg.Opportunity.Window, 60 * time.Second},
		{"threshold", cfg.Opportunity.EmergencyThreshold, 15 * time.Second},
		{"decoy chance", cfg.Spawn.DecoyChance, 0.3},
		{"ssh port", cfg.SSH.Port, "2222"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ROUND_REACTION_DELAY", "1500ms")
	t.Setenv("ZONE_RADIUS", "8")
	t.Setenv("OPP_REQUIRED", "3")
	t.Setenv("SPAWN_DECOY_CHANCE", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.LogLevel)
	}
	if cfg.Round.ReactionDelay != 1500*time.Millisecond {
		t.Errorf("reaction delay = %v, want 1.5s", cfg.Round.ReactionDelay)
	}

	opts := cfg.SessionOptions()
	if opts.Arena.Zone.Radius != 8 || opts.Opportunity.Required != 3 || opts.Arena.DecoyChance != 0.5 {
		t.Errorf("session options not mapped: %+v", opts)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
		sentinel   error
	}{
		{"SPAWN_DECOY_CHANCE", "1.5", ErrInvalid},
		{"ZONE_RADIUS", "0", ErrInvalid},
		{"OPP_REQUIRED", "0", session.ErrInvalidOptions},
		{"ROUND_READY_MIN", "10s", session.ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if !errors.Is(err, ErrInvalid) || !errors.Is(err, tt.sentinel) {
				t.Fatalf("err = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("ROUND_COUNTDOWN", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("malformed duration accepted")
	}
}

func TestPlayAreaMatchesViewport(t *testing.T) {
	area := PlayArea()
	minX, minY, maxX, maxY := Viewport().WorldBounds()
	if area.MinX != minX || area.MinY != minY || area.MaxX != maxX || area.MaxY != maxY {
		t.Fatalf("play area %+v, viewport shows (%g, %g)-(%g, %g)", area, minX, minY, maxX, maxY)
	}
}
