package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/trigger-cli/internal/store"
)

var (
	exportFormat   string
	exportOutput   string
	exportSource   string
	exportCompany  string
	exportMinScore float64
	exportArchived bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export triggers to a CSV or XLSX file",
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

		filter := store.Filter{
			SourceType:      exportSource,
			Company:         exportCompany,
			MinScore:        exportMinScore,
			IncludeArchived: exportArchived,
		}

		path := exportOutput
		if path == "" {
			path = "triggers." + exportFormat
		}

		var n int
		switch exportFormat {
		case "csv":
			n, err = store.ExportCSV(ctx, st, filter, path)
		case "xlsx":
			n, err = store.ExportXLSX(ctx, st, filter, path)
		default:
			return fmt.Errorf("unsupported export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d triggers to %s\n", n, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().StringVar(&exportSource, "source", "", "filter by source type")
	exportCmd.Flags().StringVar(&exportCompany, "company", "", "filter by company name substring")
	exportCmd.Flags().Float64Var(&exportMinScore, "min-score", 0, "minimum trigger score")
	exportCmd.Flags().BoolVar(&exportArchived, "archived", false, "include archived triggers")
	rootCmd.AddCommand(exportCmd)
}
