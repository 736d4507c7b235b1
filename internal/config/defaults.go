package config

import (
	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/world"
)

// SetDefaults sets default values for all unset configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.Step == 0 {
		cfg.Simulation.Step = engine.DefaultStep
	}
	if cfg.Simulation.Interval == 0 {
		cfg.Simulation.Interval = engine.DefaultInterval
	}
	if cfg.Simulation.Speed == 0 {
		cfg.Simulation.Speed = 1
	}
	if cfg.Simulation.ReportEvery == 0 {
		cfg.Simulation.ReportEvery = 100
	}
	if cfg.Simulation.Duration == 0 {
		cfg.Simulation.Duration = 300
	}

	// World defaults
	gen := world.DefaultGenConfig()
	if cfg.World.Stars == 0 {
		cfg.World.Stars = gen.Stars
	}
	if cfg.World.Width == 0 {
		cfg.World.Width = gen.Width
	}
	if cfg.World.Height == 0 {
		cfg.World.Height = gen.Height
	}
	if cfg.World.Margin == 0 {
		cfg.World.Margin = gen.Margin
	}
	if cfg.World.MinDistance == 0 {
		cfg.World.MinDistance = gen.MinDistance
	}
	if cfg.World.MaxAttempts == 0 {
		cfg.World.MaxAttempts = gen.MaxAttempts
	}

	// Economy defaults
	if cfg.Economy.CollectionInterval == 0 {
		cfg.Economy.CollectionInterval = engine.DefaultCollectionInterval
	}
	if cfg.Economy.PlayerCapacity == 0 {
		cfg.Economy.PlayerCapacity = engine.DefaultPlayerCapacity
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	// Journal defaults
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "starsim.db"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
