package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/starweave/internal/config"
	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/world"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

// newRootCommand creates the root command for the CLI
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "starsim",
		Short: "Starweave - grow a network of stars into constellations",
		Long: `starsim simulates a directed network of resource-producing stars.
Stars closer to the hub produce more, closed loops of three or more stars
form constellations that double production, and specialized stars turn
player resources into units.

Examples:
  starsim galaxy --seed 42
  starsim simulate --duration 600 --scenario scenarios/triangle.hcl
  starsim run --config starsim.yaml
  starsim history`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.Logging.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				loaded.Logging.Format = logFormat
			}
			if err := config.ValidateConfig(loaded); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			cfg = loaded
			slog.SetDefault(newLogger(os.Stderr, cfg.Logging))
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./starsim.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format: text, json")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newSimulateCommand())
	rootCmd.AddCommand(newGalaxyCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// newLogger builds the slog logger described by the logging config.
func newLogger(w io.Writer, lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// applyWorldFlags copies --seed and --stars onto the config when set.
func applyWorldFlags(cmd *cobra.Command, seed int64, stars int) error {
	if cmd.Flags().Changed("seed") {
		cfg.World.Seed = seed
	}
	if cmd.Flags().Changed("stars") {
		cfg.World.Stars = stars
	}
	return config.ValidateConfig(cfg)
}

// newWorld generates a galaxy and a simulation over it.
func newWorld(c *config.Config, units engine.UnitSink) (*world.Galaxy, *engine.Simulation, error) {
	gal := world.Generate(c.GenConfig())
	opts, err := c.Options()
	if err != nil {
		return nil, nil, err
	}
	opts.Units = units
	sim, err := engine.NewSimulation(gal.Graph, gal.Hub, opts)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("galaxy generated", "seed", gal.Seed, "stars", gal.StarCount(), "hub", gal.Star(gal.Hub).Name)
	return gal, sim, nil
}
