package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/trigger-cli/internal/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics for stored triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}

		printStats(stats)
		return nil
	},
}

func printStats(stats *model.TriggerStats) {
	fmt.Printf("Total triggers:      %d\n", stats.TotalTriggers)
	fmt.Printf("High score (>= 7):   %d\n", stats.HighScoreCount)
	fmt.Printf("Detected last 24h:   %d\n", stats.RecentTriggers)

	if len(stats.BySource) > 0 {
		fmt.Println("\nBy source:")
		sources := make([]string, 0, len(stats.BySource))
		for src := range stats.BySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, src := range sources {
			fmt.Fprintf(w, "  %s\t%d\n", src, stats.BySource[src])
		}
		w.Flush() //nolint:errcheck
	}

	if len(stats.TopCompanies) > 0 {
		fmt.Println("\nTop companies:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range stats.TopCompanies {
			fmt.Fprintf(w, "  %s\t%d\n", c.Company, c.Count)
		}
		w.Flush() //nolint:errcheck
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
