// Package config loads the tuning file shared by the viewer and the
// headless commands.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/anim"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/city"
	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/solver"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Engine  Engine  `yaml:"engine"`
	View    View    `yaml:"view"`
	Logging Logging `yaml:"logging"`
}

// Engine tunes the simulation.
type Engine struct {
	Stiffness   float64 `yaml:"stiffness"`
	Mass        float64 `yaml:"mass"`
	Damping     float64 `yaml:"damping"`      // 0 means critical damping
	MaxSubstep  float64 `yaml:"max_substep"`  // seconds
	MaxSubsteps int     `yaml:"max_substeps"` // per Advance
	Epsilon     float64 `yaml:"epsilon"`

	GridSpacing    float64 `yaml:"grid_spacing"` // layout units
	LayoutSize     float64 `yaml:"layout_size"`
	UnitsPerSecond float64 `yaml:"units_per_second"` // 0 calibrates per city

	TimenessPeriod     float64 `yaml:"timeness_period"` // seconds
	Dip                float64 `yaml:"dip"`
	ThresholdPeriod    float64 `yaml:"threshold_period"`    // seconds
	ThresholdAmplitude float64 `yaml:"threshold_amplitude"` // 0 uses the longest spring
}

// View holds the viewer's initial toggles.
type View struct {
	Animate               bool   `yaml:"animate"`
	FocusOnHover          bool   `yaml:"focus_on_hover"`
	ShowSpringArrows      bool   `yaml:"show_spring_arrows"`
	ShowGridPoints        bool   `yaml:"show_grid_points"`
	ShowGrid              bool   `yaml:"show_grid"`
	ShowGridNumbers       bool   `yaml:"show_grid_numbers"`
	ShowSpringsByDistance bool   `yaml:"show_springs_by_distance"`
	FPS                   int    `yaml:"fps"`
	CityDir               string `yaml:"city_dir"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	p := solver.DefaultParams()
	return &Config{
		Engine: Engine{
			Stiffness:       solver.DefaultStiffness,
			Mass:            p.Mass,
			Damping:         0,
			MaxSubstep:      p.MaxSubstep,
			MaxSubsteps:     p.MaxSubsteps,
			Epsilon:         p.Epsilon,
			GridSpacing:     50,
			LayoutSize:      city.DefaultLayoutSize,
			TimenessPeriod:  anim.DefaultTimenessPeriod,
			Dip:             anim.DefaultDip,
			ThresholdPeriod: anim.DefaultThresholdPeriod,
		},
		View: View{
			Animate:  true,
			ShowGrid: true,
			FPS:      30,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads a YAML config on top of the defaults. A missing file is not an
// error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies SPACETIME_* environment variables. Unparseable
// values are ignored.
func (c *Config) applyEnvOverrides() {
	if v, ok := envFloat("SPACETIME_STIFFNESS"); ok {
		c.Engine.Stiffness = v
	}
	if v, ok := envFloat("SPACETIME_DAMPING"); ok {
		c.Engine.Damping = v
	}
	if v, ok := envFloat("SPACETIME_GRID_SPACING"); ok {
		c.Engine.GridSpacing = v
	}
	if level := os.Getenv("SPACETIME_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

func envFloat(name string) (float64, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ValidLevels are the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every setting. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	e := c.Engine
	checks := []struct {
		ok   bool
		what string
	}{
		{positive(e.Stiffness), "engine.stiffness must be positive"},
		{positive(e.Mass), "engine.mass must be positive"},
		{e.Damping >= 0 && !math.IsInf(e.Damping, 0), "engine.damping must be zero or positive"},
		{positive(e.MaxSubstep), "engine.max_substep must be positive"},
		{e.MaxSubsteps >= 1, "engine.max_substeps must be at least 1"},
		{positive(e.Epsilon), "engine.epsilon must be positive"},
		{positive(e.GridSpacing), "engine.grid_spacing must be positive"},
		{positive(e.LayoutSize), "engine.layout_size must be positive"},
		{e.UnitsPerSecond >= 0 && !math.IsInf(e.UnitsPerSecond, 0), "engine.units_per_second must be zero or positive"},
		{positive(e.TimenessPeriod), "engine.timeness_period must be positive"},
		{e.Dip >= 0 && e.Dip < 0.5, "engine.dip must be in [0, 0.5)"},
		{positive(e.ThresholdPeriod), "engine.threshold_period must be positive"},
		{e.ThresholdAmplitude >= 0 && !math.IsInf(e.ThresholdAmplitude, 0), "engine.threshold_amplitude must be zero or positive"},
		{c.View.FPS >= 1 && c.View.FPS <= 240, "view.fps must be between 1 and 240"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, ch.what)
		}
	}

	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid logging level %q (valid: %v)", ErrInvalidConfig, c.Logging.Level, ValidLevels)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// SolverParams converts the engine settings for the solver. Zero damping
// becomes critical damping for the configured stiffness and mass.
func (e Engine) SolverParams() solver.Params {
	damping := e.Damping
	if damping == 0 {
		damping = solver.CriticalDamping(e.Stiffness, e.Mass)
	}
	return solver.Params{
		Mass:        e.Mass,
		Damping:     damping,
		MaxSubstep:  e.MaxSubstep,
		MaxSubsteps: e.MaxSubsteps,
		Epsilon:     e.Epsilon,
	}
}

// CityOptions converts the engine settings for city.Build.
func (e Engine) CityOptions() city.Options {
	return city.Options{
		LayoutSize:     e.LayoutSize,
		UnitsPerSecond: e.UnitsPerSecond,
		Stiffness:      e.Stiffness,
	}
}
