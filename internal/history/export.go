package history

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/internal/parquet"
	"github.com/huangsam/revstamp/schema"
)

// ExportHistory writes every recorded run in store to a Parquet file at outputFile.
func ExportHistory(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return errors.Wrap(err, "failed to get history status")
	}
	if status.TotalRuns == 0 {
		return errors.New("no recorded runs found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting %d runs from %s backend...\n", status.TotalRuns, status.Backend)

	runs, err := store.List(0)
	if err != nil {
		return errors.Wrap(err, "failed to retrieve runs")
	}
	records := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(records, outputFile); err != nil {
		return errors.Wrap(err, "failed to write runs")
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(records), outputFile)
	return nil
}

// PrintHistoryStatus prints history status information.
func PrintHistoryStatus(w io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(w, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(contract.DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(contract.DateTimeFormat))
		_, _ = fmt.Fprintf(w, "Distinct Directories: %d\n", status.DistinctDirectories)
	}
}
