package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trigger-cli/internal/monitor"
	"github.com/sells-group/trigger-cli/internal/store"
)

var runAll bool

var runCmd = &cobra.Command{
	Use:   "run [source]",
	Short: "Run one monitor by source type, or all enabled monitors",
	Long: `Run fetches and analyzes one source (news, regulatory, tender,
financial) and stores the resulting triggers. With --all, every monitor
enabled in the configuration runs concurrently.`,
	Args: cobra.MaximumNArgs(1),
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

		deps, err := initDeps()
		if err != nil {
			return err
		}

		if runAll {
			return runAllMonitors(cmd, st, deps)
		}
		if len(args) == 0 {
			return fmt.Errorf("specify a source type or --all")
		}

		m := monitor.ByName(deps, args[0])
		if m == nil {
			return fmt.Errorf("unknown source type: %s", args[0])
		}

		results, run := monitor.Run(ctx, m)
		stored, duplicates := storeResults(ctx, st, results, run)
		fmt.Printf("%s: %d items, %d triggers, %d stored, %d duplicates\n",
			m.Name(), run.Items, run.Triggers, stored, duplicates)
		if run.Error != "" {
			fmt.Printf("fetch error: %s\n", run.Error)
		}
		return nil
	},
}

func runAllMonitors(cmd *cobra.Command, st store.Store, deps *monitor.Deps) error {
	monitors := monitor.All(deps)
	if len(monitors) == 0 {
		return fmt.Errorf("no monitors enabled")
	}

	// Inserts are serialized so the two store backends behave alike.
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(len(monitors))
	for _, m := range monitors {
		g.Go(func() error {
			results, run := monitor.Run(ctx, m)

			mu.Lock()
			stored, duplicates := storeResults(ctx, st, results, run)
			mu.Unlock()

			fmt.Printf("%s: %d items, %d triggers, %d stored, %d duplicates\n",
				m.Name(), run.Items, run.Triggers, stored, duplicates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	zap.L().Info("all monitors finished", zap.Int("monitors", len(monitors)))
	return nil
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every enabled monitor")
	rootCmd.AddCommand(runCmd)
}
