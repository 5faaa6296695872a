package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/DaysLikeThis99Problems/SpaceTimeMaps/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 40.0, cfg.Engine.Stiffness)
	assert.Equal(t, solver.DefaultParams(), cfg.Engine.SolverParams())
	assert.True(t, cfg.View.Animate)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spacetime.yaml")
	data := "engine:\n  stiffness: 10\n  grid_spacing: 25\nview:\n  animate: false\n  show_grid_numbers: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Engine.Stiffness)
	assert.Equal(t, 25.0, cfg.Engine.GridSpacing)
	assert.False(t, cfg.View.Animate)
	assert.True(t, cfg.View.ShowGridNumbers)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.View.FPS)
	assert.Equal(t, 5.0, cfg.Engine.TimenessPeriod)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [1, 2"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spacetime.yaml")
	cfg := DefaultConfig()
	cfg.Engine.Dip = 0.1
	cfg.View.CityDir = "/tmp/cities"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("numbers override the file", func(t *testing.T) {
		t.Setenv("SPACETIME_STIFFNESS", "12.5")
		t.Setenv("SPACETIME_DAMPING", "3")
		t.Setenv("SPACETIME_GRID_SPACING", "80")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 12.5, cfg.Engine.Stiffness)
		assert.Equal(t, 3.0, cfg.Engine.Damping)
		assert.Equal(t, 80.0, cfg.Engine.GridSpacing)
	})

	t.Run("log level is lowercased", func(t *testing.T) {
		t.Setenv("SPACETIME_LOG_LEVEL", "DEBUG")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("unparseable numbers are ignored", func(t *testing.T) {
		t.Setenv("SPACETIME_STIFFNESS", "stiff")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 40.0, cfg.Engine.Stiffness)
	})

	t.Run("Load applies overrides", func(t *testing.T) {
		t.Setenv("SPACETIME_GRID_SPACING", "12")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 12.0, cfg.Engine.GridSpacing)
	})
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero stiffness", func(c *Config) { c.Engine.Stiffness = 0 }},
		{"nan mass", func(c *Config) { c.Engine.Mass = math.NaN() }},
		{"negative damping", func(c *Config) { c.Engine.Damping = -1 }},
		{"zero substep", func(c *Config) { c.Engine.MaxSubstep = 0 }},
		{"no substeps", func(c *Config) { c.Engine.MaxSubsteps = 0 }},
		{"infinite spacing", func(c *Config) { c.Engine.GridSpacing = math.Inf(1) }},
		{"dip too large", func(c *Config) { c.Engine.Dip = 0.5 }},
		{"negative amplitude", func(c *Config) { c.Engine.ThresholdAmplitude = -2 }},
		{"fps", func(c *Config) { c.View.FPS = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSolverParamsKeepsExplicitDamping(t *testing.T) {
	e := DefaultConfig().Engine
	e.Damping = 2
	assert.Equal(t, 2.0, e.SolverParams().Damping)

	e.Damping = 0
	e.Stiffness = 9
	assert.InDelta(t, 6.0, e.SolverParams().Damping, 1e-12)
}

func TestCityOptions(t *testing.T) {
	e := DefaultConfig().Engine
	e.UnitsPerSecond = 0.25
	opts := e.CityOptions()
	assert.Equal(t, 1000.0, opts.LayoutSize)
	assert.Equal(t, 0.25, opts.UnitsPerSecond)
	assert.Equal(t, 40.0, opts.Stiffness)
}
