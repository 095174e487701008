package store

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/trigger-cli/internal/model"
)

var exportHeader = []string{
	"ID", "Source Type", "Source Name", "Title", "Company",
	"Trigger Score", "Sentiment", "Keywords", "URL", "Detected At",
}

func exportRow(ev model.TriggerEvent) []string {
	return []string{
		strconv.FormatInt(ev.ID, 10),
		string(ev.SourceType),
		ev.SourceName,
		ev.Title,
		ev.CompanyName,
		strconv.FormatFloat(ev.TriggerScore, 'f', 1, 64),
		strconv.FormatFloat(ev.SentimentScore, 'f', 3, 64),
		strings.Join(ev.TriggerKeywords, ", "),
		ev.URL,
		ev.DetectedAt.Format(time.RFC3339),
	}
}

// ExportCSV writes the triggers matching the filter to a CSV file and
// returns the number of rows written.
func ExportCSV(ctx context.Context, s Store, filter Filter, path string) (int, error) {
	events, err := s.QueryTriggers(ctx, filter)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return 0, eris.Wrap(err, "export: write header")
	}
	for _, ev := range events {
		if err := w.Write(exportRow(ev)); err != nil {
			return 0, eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, eris.Wrap(err, "export: flush")
	}
	return len(events), nil
}

// ExportXLSX writes the triggers matching the filter to an XLSX workbook
// and returns the number of rows written.
func ExportXLSX(ctx context.Context, s Store, filter Filter, path string) (int, error) {
	events, err := s.QueryTriggers(ctx, filter)
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Triggers")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().Value = h
	}
	for _, ev := range events {
		row := sheet.AddRow()
		for _, v := range exportRow(ev) {
			row.AddCell().Value = v
		}
	}

	if err := file.Save(path); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", path)
	}
	return len(events), nil
}
