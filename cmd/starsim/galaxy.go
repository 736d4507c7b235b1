package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talgya/starweave/internal/world"
)

func newGalaxyCommand() *cobra.Command {
	var (
		seed   int64
		stars  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "galaxy",
		Short: "Generate a galaxy and print its stars",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyWorldFlags(cmd, seed, stars); err != nil {
				return err
			}
			gal := world.Generate(cfg.GenConfig())
			out := cmd.OutOrStdout()

			if asJSON {
				type starJSON struct {
					ID       uint32             `json:"id"`
					Name     string             `json:"name"`
					X        float64            `json:"x"`
					Y        float64            `json:"y"`
					BaseRate float64            `json:"base_rate"`
					Stock    map[string]float64 `json:"stock"`
				}
				var list []starJSON
				for _, st := range gal.Graph.Stars() {
					sj := starJSON{
						ID:       uint32(st.ID),
						Name:     st.Name,
						X:        st.Position.X,
						Y:        st.Position.Y,
						BaseRate: st.BaseRate,
						Stock:    make(map[string]float64),
					}
					for _, k := range st.Ledger.Kinds() {
						sj.Stock[k.String()] = st.Ledger.Amount(k)
					}
					list = append(list, sj)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"galaxy": gal, "stars": list})
			}

			fmt.Fprintln(out, gal)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tX\tY\tRATE\tNEAREST\tRESOURCES")
			for _, st := range gal.Graph.Stars() {
				nearest := "-"
				if n, ok := gal.Nearest(st.Position, st.ID); ok {
					nearest = fmt.Sprintf("%s (%.0f)", n.Name, world.Distance(st.Position, n.Position))
				}
				var res []string
				for _, k := range st.Ledger.Kinds() {
					res = append(res, fmt.Sprintf("%s %.0f/%.0f", k, st.Ledger.Amount(k), st.Ledger.Capacity(k)))
				}
				fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.0f\t%.2f\t%s\t%s\n",
					st.ID, st.Name, st.Position.X, st.Position.Y, st.BaseRate, nearest, strings.Join(res, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Galaxy seed (0 = random)")
	cmd.Flags().IntVar(&stars, "stars", 0, "Number of stars including the hub")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
