package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/starweave/internal/engine"
	"github.com/talgya/starweave/internal/routing"
)

func newSimulateCommand() *cobra.Command {
	var (
		seed     int64
		stars    int
		duration float64
		scenario string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the simulation headless for a fixed simulated duration and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyWorldFlags(cmd, seed, stars); err != nil {
				return err
			}
			if cmd.Flags().Changed("duration") {
				cfg.Simulation.Duration = duration
			}
			if cmd.Flags().Changed("scenario") {
				cfg.Simulation.Scenario = scenario
			}
			cfg.Metrics.Enabled = false

			s, err := newSession()
			if err != nil {
				return err
			}

			d := cfg.Simulation.Duration
			if s.script != nil && s.script.Duration > 0 && !cmd.Flags().Changed("duration") {
				d = s.script.Duration
			}
			ticks := s.eng.AdvanceFor(d)
			if err := s.close(); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.sim.Snapshot())
			}
			printReport(cmd.OutOrStdout(), s, ticks)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Galaxy seed (0 = random)")
	cmd.Flags().IntVar(&stars, "stars", 0, "Number of stars including the hub")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Simulated seconds to run (default from config or scenario)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "HCL scenario script to feed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the final state as JSON")

	return cmd
}

func printReport(w io.Writer, s *session, ticks int) {
	snap := s.sim.Snapshot()
	st := snap.Stats

	fmt.Fprintf(w, "Simulated %s in %s ticks (seed %d)\n", snap.SimTime, humanize.Comma(int64(ticks)), s.gal.Seed)
	fmt.Fprintf(w, "Stars: %d, colonized %d, reachable %d\n", st.Stars, st.Colonized, st.Reachable)
	fmt.Fprintf(w, "Connections: %d, constellations %d, rejected requests %d\n",
		st.Connections, st.Constellations, st.RequestErrors)
	fmt.Fprintf(w, "Units produced: %s, skipped cycles %d, hauled %s\n\n",
		humanize.Comma(int64(st.UnitsProduced)), st.SkippedCycles, humanize.FormatFloat("#,###.#", st.Hauled))

	if len(snap.Constellations) > 0 {
		fmt.Fprintln(w, "Constellations:")
		for _, c := range snap.Constellations {
			names := make([]string, 0, len(c.Members))
			for _, id := range c.Members {
				names = append(names, s.gal.Star(id).Name)
			}
			fmt.Fprintf(w, "  %s %s formed at tick %s: %s\n",
				humanize.Ordinal(int(c.ID)+1), c.Hex, humanize.Comma(int64(c.FormedAt)), strings.Join(names, " -> "))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Player stock:")
	for _, line := range snap.Player {
		fmt.Fprintf(w, "  %-15s %10s / %s\n", line.Name,
			humanize.FormatFloat("#,###.##", line.Amount), humanize.FormatFloat("#,###.", line.Capacity))
	}
	if len(snap.Units) > 0 {
		fmt.Fprintln(w, "Units:")
		kinds := make([]string, 0, len(snap.Units))
		for k := range snap.Units {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-15s %10s\n", k, humanize.Comma(int64(snap.Units[k])))
		}
	}
	fmt.Fprintln(w)

	printStars(w, s, snap.Stars)
}

func printStars(w io.Writer, s *session, nodes []engine.NodeSnapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPEC\tLVL\tPHASE\tDIST\tEFF\tBONUS\tRATE\tUNITS")
	for _, n := range nodes {
		dist := "-"
		if n.Distance != routing.NoRoute {
			dist = fmt.Sprint(n.Distance)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%.2f\t%.0fx\t%.2f\t%d\n",
			n.ID, n.Name, n.Specialization, n.Level, n.Phase, dist,
			n.Efficiency, n.Bonus, n.Rate, s.units.FromStar(n.ID))
	}
	tw.Flush()
}
