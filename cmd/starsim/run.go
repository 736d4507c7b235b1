package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var (
		seed     int64
		stars    int
		speed    float64
		scenario string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation paced to wall-clock time until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyWorldFlags(cmd, seed, stars); err != nil {
				return err
			}
			if cmd.Flags().Changed("speed") {
				cfg.Simulation.Speed = speed
			}
			if cmd.Flags().Changed("scenario") {
				cfg.Simulation.Scenario = scenario
			}

			s, err := newSession()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			serverErr := make(chan error, 1)
			if s.server != nil {
				go func() { serverErr <- s.server.Serve(ctx) }()
				fmt.Fprintf(cmd.OutOrStdout(), "API: http://%s/api/v1/status\n", cfg.Metrics.Address())
			} else {
				serverErr <- nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Starweave is alive: %d stars around %s (seed %d). Ctrl+C to stop.\n",
				s.gal.StarCount(), s.gal.Star(s.gal.Hub).Name, s.gal.Seed)

			runErr := s.eng.Run(ctx)
			stop()

			if err := <-serverErr; err != nil {
				slog.Error("HTTP server error", "error", err)
			}
			if err := s.close(); err != nil {
				return err
			}
			if runErr != nil && runErr != context.Canceled {
				return runErr
			}

			st := s.sim.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Simulation stopped at tick %d with %d constellations.\n",
				st.Tick, st.Constellations)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Galaxy seed (0 = random)")
	cmd.Flags().IntVar(&stars, "stars", 0, "Number of stars including the hub")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Speed multiplier (0 = paused)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "HCL scenario script to feed")

	return cmd
}
