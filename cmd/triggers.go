package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/trigger-cli/internal/model"
	"github.com/sells-group/trigger-cli/internal/store"
)

var (
	listSource   string
	listCompany  string
	listMinScore float64
	listLimit    int
	listArchived bool
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Inspect and manage detected triggers",
}

var triggersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored triggers, highest score first",
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

		events, err := st.QueryTriggers(ctx, store.Filter{
			SourceType:      listSource,
			Company:         listCompany,
			MinScore:        listMinScore,
			Limit:           listLimit,
			IncludeArchived: listArchived,
		})
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No triggers found.")
			return nil
		}

		printTriggerList(events)
		return nil
	},
}

var triggersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one trigger as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseTriggerID(args[0])
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		ev, err := st.GetTrigger(ctx, id)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ev)
	},
}

var triggersProcessCmd = &cobra.Command{
	Use:   "process <id>",
	Short: "Mark a trigger as processed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateTrigger(cmd, args[0], func(c *cobra.Command, st store.Store, id int64) error {
			return st.MarkProcessed(c.Context(), id)
		})
	},
}

var triggersArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a trigger so it no longer appears in listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateTrigger(cmd, args[0], func(c *cobra.Command, st store.Store, id int64) error {
			return st.Archive(c.Context(), id)
		})
	},
}

var triggersNoteCmd = &cobra.Command{
	Use:   "note <id> <text>",
	Short: "Attach a note to a trigger",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note := strings.Join(args[1:], " ")
		return updateTrigger(cmd, args[0], func(c *cobra.Command, st store.Store, id int64) error {
			return st.SetNotes(c.Context(), id, note)
		})
	},
}

func updateTrigger(cmd *cobra.Command, rawID string, fn func(*cobra.Command, store.Store, int64) error) error {
	id, err := parseTriggerID(rawID)
	if err != nil {
		return err
	}

	st, err := initStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(cmd.Context()); err != nil {
		return err
	}
	if err := fn(cmd, st, id); err != nil {
		return err
	}

	fmt.Printf("Updated trigger %d\n", id)
	return nil
}

func parseTriggerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid trigger id: %s", raw)
	}
	return id, nil
}

func printTriggerList(events []model.TriggerEvent) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tSOURCE\tCOMPANY\tTITLE\tDETECTED")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%.1f\t%s\t%s\t%s\t%s\n",
			ev.ID,
			ev.TriggerScore,
			ev.SourceType,
			clip(ev.CompanyName, 24),
			clip(ev.Title, 60),
			ev.DetectedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush() //nolint:errcheck
}

// clip shortens a cell value so the table stays readable.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	triggersListCmd.Flags().StringVar(&listSource, "source", "", "filter by source type (news, regulatory, tender, financial)")
	triggersListCmd.Flags().StringVar(&listCompany, "company", "", "filter by company name substring")
	triggersListCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "minimum trigger score")
	triggersListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum rows to return")
	triggersListCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived triggers")

	triggersCmd.AddCommand(triggersListCmd)
	triggersCmd.AddCommand(triggersShowCmd)
	triggersCmd.AddCommand(triggersProcessCmd)
	triggersCmd.AddCommand(triggersArchiveCmd)
	triggersCmd.AddCommand(triggersNoteCmd)
	rootCmd.AddCommand(triggersCmd)
}
