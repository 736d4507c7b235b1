package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, engine.DefaultStep, cfg.Simulation.Step)
	assert.Equal(t, engine.DefaultInterval, cfg.Simulation.Interval)
	assert.Equal(t, 1.0, cfg.Simulation.Speed)
	assert.Equal(t, world.DefaultGenConfig(), cfg.GenConfig())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "localhost:9464", cfg.Metrics.Address())
	assert.False(t, cfg.Journal.Enabled)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Nil(t, opts.PlayerStock, "nil selects the engine default")
	assert.Equal(t, engine.DefaultPlayerCapacity, opts.PlayerCapacity)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  step: 0.5
  interval: 250ms
  speed: 4
world:
  stars: 30
  seed: 42
economy:
  player_capacity: 500
  player_stock:
    water: 10
    helium-3: 2
logging:
  level: debug
  format: json
journal:
  enabled: true
  path: runs.db
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Simulation.Step)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.Interval)
	assert.Equal(t, 4.0, cfg.Simulation.Speed)
	assert.Equal(t, 30, cfg.World.Stars)
	assert.Equal(t, int64(42), cfg.GenConfig().Seed)
	assert.Equal(t, 700.0, cfg.World.Width, "unset fields fall back to defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "runs.db", cfg.Journal.Path)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, 500.0, opts.PlayerCapacity)
	assert.Equal(t, map[resource.Kind]float64{resource.Water: 10, resource.Helium3: 2}, opts.PlayerStock)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
world:
  stars: 30
`)
	t.Setenv("STARSIM_WORLD_STARS", "18")
	t.Setenv("STARSIM_METRICS_PORT", "9100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 18, cfg.World.Stars)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"log level": `
logging:
  level: loud
`,
		"negative stars": `
world:
  stars: -1
`,
		"metrics port": `
metrics:
  port: 80
`,
		"unknown resource": `
economy:
  player_stock:
    unobtainium: 5
`,
		"negative stock": `
economy:
  player_stock:
    water: -5
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
