// Package config loads starsim settings from a YAML file, STARSIM_ environment
// variables and built-in defaults.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/resource"
	"github.com/talgya/starweave/internal/world"
)

// EnvPrefix is prepended to every environment override, e.g. STARSIM_WORLD_STARS.
const EnvPrefix = "STARSIM"

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	World      WorldConfig      `mapstructure:"world"`
	Economy    EconomyConfig    `mapstructure:"economy"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// SimulationConfig controls the tick loop.
type SimulationConfig struct {
	// Simulated seconds per tick
	Step float64 `mapstructure:"step" validate:"gt=0"`

	// Wall-clock time between ticks at speed 1
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`

	// Speed multiplier; 0 pauses
	Speed float64 `mapstructure:"speed" validate:"gte=0,lte=100"`

	// Ticks between progress reports
	ReportEvery uint64 `mapstructure:"report_every" validate:"gt=0"`

	// Simulated seconds a headless run lasts
	Duration float64 `mapstructure:"duration" validate:"gt=0"`

	// Optional scenario script
	Scenario string `mapstructure:"scenario"`
}

// WorldConfig controls galaxy generation.
type WorldConfig struct {
	Stars       int     `mapstructure:"stars" validate:"min=1,max=10000"`
	Width       float64 `mapstructure:"width" validate:"gt=0"`
	Height      float64 `mapstructure:"height" validate:"gt=0"`
	Margin      float64 `mapstructure:"margin" validate:"gte=0"`
	MinDistance float64 `mapstructure:"min_distance" validate:"gte=0"`
	MaxAttempts int     `mapstructure:"max_attempts" validate:"min=1"`

	// 0 picks a random seed
	Seed int64 `mapstructure:"seed"`
}

// EconomyConfig sets the player's ledger and haul cadence.
type EconomyConfig struct {
	// Simulated seconds between hauls from colonized stars
	CollectionInterval float64 `mapstructure:"collection_interval" validate:"gt=0"`

	// Player capacity per kind before sinks are added
	PlayerCapacity float64 `mapstructure:"player_capacity" validate:"gt=0"`

	// Starting stock by resource name; empty selects the default stock
	PlayerStock map[string]float64 `mapstructure:"player_stock" validate:"dive,gte=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// Log format: json, text
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// JournalConfig controls the SQLite run journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// MetricsConfig holds metrics collection and exposure configuration
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served
	Enabled bool `mapstructure:"enabled"`

	// Port for the HTTP metrics server
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	// Host to bind the metrics HTTP server
	Host string `mapstructure:"host"`

	// Path for the metrics endpoint
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Address returns host:port for the metrics listener.
func (m MetricsConfig) Address() string {
	return m.Host + ":" + strconv.Itoa(m.Port)
}

// keys lists every setting so environment variables work without a config file.
var keys = []string{
	"simulation.step", "simulation.interval", "simulation.speed",
	"simulation.report_every", "simulation.duration", "simulation.scenario",
	"world.stars", "world.width", "world.height", "world.margin",
	"world.min_distance", "world.max_attempts", "world.seed",
	"economy.collection_interval", "economy.player_capacity",
	"logging.level", "logging.format",
	"journal.enabled", "journal.path",
	"metrics.enabled", "metrics.port", "metrics.host", "metrics.path",
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (starsim.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("starsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}

// GenConfig returns the galaxy generation parameters.
func (c *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Stars:       c.World.Stars,
		Width:       c.World.Width,
		Height:      c.World.Height,
		Margin:      c.World.Margin,
		MinDistance: c.World.MinDistance,
		MaxAttempts: c.World.MaxAttempts,
		Seed:        c.World.Seed,
	}
}

// Options returns the simulation options for the economy settings.
func (c *Config) Options() (engine.Options, error) {
	stock, err := c.Economy.Stock()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		CollectionInterval: c.Economy.CollectionInterval,
		PlayerCapacity:     c.Economy.PlayerCapacity,
		PlayerStock:        stock,
	}, nil
}

// Stock resolves the configured starting stock. Nil means the default.
func (e EconomyConfig) Stock() (map[resource.Kind]float64, error) {
	if len(e.PlayerStock) == 0 {
		return nil, nil
	}
	out := make(map[resource.Kind]float64, len(e.PlayerStock))
	for name, q := range e.PlayerStock {
		k, err := resource.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("economy.player_stock: %w", err)
		}
		out[k] += q
	}
	return out, nil
}
