package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteHistory outputs recorded runs, dispatching based on the output format configured.
// The properties format has no history rendering and falls back to the table.
func WriteHistory(runs []schema.HistoryRecord, cfg *contract.Config, duration time.Duration) error {
	var write func(io.Writer) error
	var msg string
	switch cfg.Output {
	case schema.JSONOut:
		write, msg = func(w io.Writer) error { return writeJSON(w, nonNilRuns(runs)) }, "Wrote JSON"
	case schema.YAMLOut:
		write, msg = func(w io.Writer) error { return writeYAML(w, nonNilRuns(runs)) }, "Wrote YAML"
	case schema.CSVOut:
		write, msg = func(w io.Writer) error { return writeHistoryCSV(w, runs) }, "Wrote CSV"
	default:
		write, msg = func(w io.Writer) error { return writeHistoryTable(w, runs, cfg, duration) }, "Wrote table"
	}
	if err := writeWithFile(cfg.OutputFile, write, msg); err != nil {
		return errors.Wrapf(err, "error writing %s history", cfg.Output)
	}
	return nil
}

func nonNilRuns(runs []schema.HistoryRecord) []schema.HistoryRecord {
	if runs == nil {
		return []schema.HistoryRecord{}
	}
	return runs
}

// writeHistoryTable generates and writes the human-readable history table.
func writeHistoryTable(w io.Writer, runs []schema.HistoryRecord, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Recorded", "Directory", "Backend", "Revision", "Remote"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.RecordedAt.Local().Format(contract.DateTimeFormat),
			contract.TruncatePath(r.Directory, pathWidth),
			string(r.Backend),
			r.Revision,
			strconv.FormatBool(r.RemoteChanges),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs in %v. History backend: %s\n", len(runs), duration, cfg.HistoryBackend)
	return err
}

// historyCSVHeader lists the columns of the history CSV output.
var historyCSVHeader = []string{
	"run_id",
	"run_uuid",
	"recorded_at",
	"directory",
	"backend",
	"repository",
	"path",
	"revision",
	"file_name_safe_revision",
	"max_revision",
	"min_revision",
	"remote_changes",
	"kinds",
	"duration_ms",
}

// writeHistoryCSV writes one row per recorded run.
func writeHistoryCSV(w io.Writer, runs []schema.HistoryRecord) error {
	return writeCSVWithHeader(w, historyCSVHeader, func(cw *csv.Writer) error {
		for _, r := range runs {
			rec := []string{
				strconv.FormatInt(r.RunID, 10),
				r.RunUUID,
				r.RecordedAt.UTC().Format(time.RFC3339Nano),
				r.Directory,
				string(r.Backend),
				r.Repository,
				r.Path,
				r.Revision,
				r.FileNameSafeRevision,
				optionalInt(r.MaxRevision),
				optionalInt(r.MinRevision),
				strconv.FormatBool(r.RemoteChanges),
				r.Kinds,
				optionalInt(r.DurationMs),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
