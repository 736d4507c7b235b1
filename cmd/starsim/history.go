package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/starweave/internal/journal"
)

func newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs, or show one run's constellations and recent events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				runs, err := j.Runs()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tSTARTED\tSEED\tSTARS\tLAST TICK")
				for _, r := range runs {
					last := "running"
					if r.Finished {
						last = humanize.Comma(int64(r.LastTick))
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, humanize.Time(r.StartedAt), r.Seed, r.Stars, last)
				}
				return tw.Flush()
			}

			run, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			counts, err := j.EventCounts(run)
			if err != nil {
				return err
			}
			cats := make([]string, 0, len(counts))
			for c := range counts {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			fmt.Fprintf(out, "Run %s\n", run)
			for _, c := range cats {
				fmt.Fprintf(out, "  %-14s %s events\n", c, humanize.Comma(int64(counts[c])))
			}

			cons, err := j.Constellations(run)
			if err != nil {
				return err
			}
			if len(cons) > 0 {
				fmt.Fprintln(out, "Constellations:")
				for _, c := range cons {
					fmt.Fprintf(out, "  #%d %s members %v formed at tick %d\n", c.ID, c.Color, c.Members, c.FormedAt)
				}
			}

			events, err := j.RecentEvents(run, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Recent events:")
			for i := len(events) - 1; i >= 0; i-- {
				e := events[i]
				fmt.Fprintf(out, "  [%d] %-13s %s\n", e.Tick, e.Category, e.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of recent events to show")

	return cmd
}
