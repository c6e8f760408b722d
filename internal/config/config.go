// Package config loads the round and server configuration from the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tomz197/frogduel/internal/arena"
	loopconfig "github.com/tomz197/frogduel/internal/loop/config"
	"github.com/tomz197/frogduel/internal/opportunity"
	"github.com/tomz197/frogduel/internal/physics"
	"github.com/tomz197/frogduel/internal/session"
	"github.com/tomz197/frogduel/internal/view"
	"github.com/tomz197/frogduel/internal/zone"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every load-time knob. Nothing changes mid-round.
type Config struct {
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Seed     int64      `env:"SEED" envDefault:"0"` // 0 seeds from the clock

	Round       Round       `envPrefix:"ROUND_"`
	Zone        Zone        `envPrefix:"ZONE_"`
	Opportunity Opportunity `envPrefix:"OPP_"`
	Spawn       Spawn       `envPrefix:"SPAWN_"`
	SSH         SSH         `envPrefix:"SSH_"`
	Web         Web         `envPrefix:"WEB_"`
}

// Round holds the phase timings.
type Round struct {
	Countdown      time.Duration `env:"COUNTDOWN" envDefault:"3s"`
	CountdownStep  time.Duration `env:"COUNTDOWN_STEP" envDefault:"1s"`
	ReadyMin       time.Duration `env:"READY_MIN" envDefault:"1s"`
	ReadyMax       time.Duration `env:"READY_MAX" envDefault:"5s"`
	ReactionDelay  time.Duration `env:"REACTION_DELAY" envDefault:"2s"`
	StrikeDuration time.Duration `env:"STRIKE_DURATION" envDefault:"1s"`
}

// Zone holds the zone geometry, in world units.
type Zone struct {
	Radius       float64 `env:"RADIUS" envDefault:"6"`
	Tolerance    float64 `env:"TOLERANCE" envDefault:"0.25"`
	OrbitRadius  float64 `env:"ORBIT_RADIUS" envDefault:"3"`
	AngularSpeed float64 `env:"ANGULAR_SPEED" envDefault:"0.6"`
}

// Opportunity holds the scheduler guarantee.
type Opportunity struct {
	Required           int           `env:"REQUIRED" envDefault:"2"`
	Window             time.Duration `env:"WINDOW" envDefault:"60s"`
	MinSolo            time.Duration `env:"MIN_SOLO" envDefault:"2s"`
	EmergencyThreshold time.Duration `env:"EMERGENCY_THRESHOLD" envDefault:"15s"`
	DwellBuffer        time.Duration `env:"DWELL_BUFFER" envDefault:"1s"`
}

// Spawn holds entity creation and motion parameters.
type Spawn struct {
	Interval     time.Duration `env:"INTERVAL" envDefault:"3s"`
	DecoyChance  float64       `env:"DECOY_CHANCE" envDefault:"0.3"`
	Size         float64       `env:"SIZE" envDefault:"1.5"`
	Speed        float64       `env:"SPEED" envDefault:"4"`
	HomingSpeed  float64       `env:"HOMING_SPEED" envDefault:"8"`
	Lifetime     time.Duration `env:"LIFETIME" envDefault:"10s"`
	PassDistance float64       `env:"PASS_DISTANCE" envDefault:"1"`
	ArriveRadius float64       `env:"ARRIVE_RADIUS" envDefault:"1"`
	RepelSpeed   float64       `env:"REPEL_SPEED" envDefault:"20"`
}

// SSH configures the SSH host.
type SSH struct {
	Host        string `env:"HOST" envDefault:"::"`
	Port        string `env:"PORT" envDefault:"2222"`
	HostKeyPath string `env:"HOST_KEY" envDefault:"/app/keys/host_key"`
}

// Web configures the landing page server.
type Web struct {
	Host        string `env:"HOST" envDefault:"0.0.0.0"`
	Port        string `env:"PORT" envDefault:"8080"`
	DisplayHost string `env:"SSH_DISPLAY_HOST" envDefault:"your-server.com"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the documented defaults without reading the environment.
func Default() *Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(fmt.Sprintf("config defaults do not parse: %v", err))
	}
	return &cfg
}

// Validate checks values the round packages cannot check on their own.
func (c *Config) Validate() error {
	switch {
	case c.Zone.Radius <= 0:
		return fmt.Errorf("%w: zone radius must be positive, got %g", ErrInvalid, c.Zone.Radius)
	case c.Zone.Tolerance < 0:
		return fmt.Errorf("%w: zone tolerance must not be negative, got %g", ErrInvalid, c.Zone.Tolerance)
	case c.Zone.OrbitRadius < 0:
		return fmt.Errorf("%w: orbit radius must not be negative, got %g", ErrInvalid, c.Zone.OrbitRadius)
	case c.Spawn.DecoyChance < 0 || c.Spawn.DecoyChance > 1:
		return fmt.Errorf("%w: decoy chance %g outside [0, 1]", ErrInvalid, c.Spawn.DecoyChance)
	case c.Spawn.Size <= 0:
		return fmt.Errorf("%w: entity size must be positive, got %g", ErrInvalid, c.Spawn.Size)
	case c.Spawn.Speed < 0 || c.Spawn.HomingSpeed < 0 || c.Spawn.RepelSpeed <= 0:
		return fmt.Errorf("%w: speeds must not be negative and repel speed must be positive", ErrInvalid)
	case c.Spawn.Lifetime < 0 || c.Spawn.Interval < 0:
		return fmt.Errorf("%w: spawn interval and lifetime must not be negative", ErrInvalid)
	}
	if err := c.SessionOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// PlayArea returns the play area: the world rectangle centered on the origin.
func PlayArea() physics.Rect {
	return physics.RectAround(0, 0, loopconfig.WorldWidth, loopconfig.WorldHeight)
}

// Viewport returns a view that shows the whole play area.
func Viewport() *view.Viewport {
	return view.NewViewport(loopconfig.ViewWidth, loopconfig.ViewHeight, loopconfig.ViewScale)
}

// SessionOptions maps the configuration onto a round.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Countdown:      c.Round.Countdown,
		CountdownStep:  c.Round.CountdownStep,
		ReadyMin:       c.Round.ReadyMin,
		ReadyMax:       c.Round.ReadyMax,
		ReactionDelay:  c.Round.ReactionDelay,
		StrikeDuration: c.Round.StrikeDuration,
		Arena: arena.Options{
			Bounds:   PlayArea(),
			Margin:   loopconfig.WorldMargin,
			CellSize: loopconfig.CellSize,
			Zone: zone.Options{
				Radius:       c.Zone.Radius,
				Tolerance:    c.Zone.Tolerance,
				OrbitRadius:  c.Zone.OrbitRadius,
				AngularSpeed: c.Zone.AngularSpeed,
			},
			BugSize:       c.Spawn.Size,
			BugSpeed:      c.Spawn.Speed,
			HomingSpeed:   c.Spawn.HomingSpeed,
			Lifetime:      c.Spawn.Lifetime,
			PassDistance:  c.Spawn.PassDistance,
			ArriveRadius:  c.Spawn.ArriveRadius,
			RepelSpeed:    c.Spawn.RepelSpeed,
			SpawnInterval: c.Spawn.Interval,
			DecoyChance:   c.Spawn.DecoyChance,
		},
		Opportunity: opportunity.Options{
			Required:           c.Opportunity.Required,
			Window:             c.Opportunity.Window,
			MinSolo:            c.Opportunity.MinSolo,
			EmergencyThreshold: c.Opportunity.EmergencyThreshold,
			DwellBuffer:        c.Opportunity.DwellBuffer,
		},
	}
}
