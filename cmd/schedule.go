package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trigger-cli/internal/monitor"
	"github.com/sells-group/trigger-cli/internal/sched"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the monitors continuously on their configured intervals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

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

		scheduler := sched.New(deps, func(ctx context.Context, m monitor.Monitor) {
			results, run := monitor.Run(ctx, m)
			stored, duplicates := storeResults(ctx, st, results, run)
			zap.L().Info("scheduled run stored",
				zap.String("monitor", m.Name()),
				zap.Int("stored", stored),
				zap.Int("duplicates", duplicates),
			)
		})
		if err := scheduler.Start(ctx); err != nil {
			return err
		}

		zap.L().Info("scheduler started", zap.Int("monitors", scheduler.Entries()))
		<-ctx.Done()

		// Let in-flight runs finish before closing the store.
		<-scheduler.Stop().Done()
		zap.L().Info("scheduler stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
