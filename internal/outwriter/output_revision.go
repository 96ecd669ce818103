package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRevisionInfo outputs a described directory, dispatching based on the output format configured.
func WriteRevisionInfo(info schema.RevisionInfo, cfg *contract.Config, duration time.Duration) error {
	var write func(io.Writer) error
	var msg string
	switch cfg.Output {
	case schema.JSONOut:
		write, msg = func(w io.Writer) error { return writeJSON(w, info) }, "Wrote JSON"
	case schema.YAMLOut:
		write, msg = func(w io.Writer) error { return writeYAML(w, info) }, "Wrote YAML"
	case schema.CSVOut:
		write, msg = func(w io.Writer) error { return writeRevisionCSV(w, info) }, "Wrote CSV"
	case schema.PropertiesOut:
		write, msg = func(w io.Writer) error { return writeRevisionProperties(w, info, cfg.PropertyPrefix) }, "Wrote properties"
	default:
		write, msg = func(w io.Writer) error { return writeRevisionTable(w, info, cfg, duration) }, "Wrote table"
	}
	if err := writeWithFile(cfg.OutputFile, write, msg); err != nil {
		return errors.Wrapf(err, "error writing %s output", cfg.Output)
	}
	return nil
}

// writeRevisionTable writes the human-readable two-column table.
func writeRevisionTable(w io.Writer, info schema.RevisionInfo, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Property", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	revision := info.Revision
	if cfg.UseColors {
		revision = contract.GetColorToken(info, revision)
	}
	data := [][]string{
		{"Directory", info.Directory},
		{"Backend", string(info.Backend)},
		{"Repository", info.Repository},
		{"Path", info.Path},
		{"Revision", revision},
		{"File-name-safe revision", info.FileNameSafeRevision},
	}
	if info.Versioned {
		data = append(data,
			[]string{"Max revision", optionalInt(info.MaxRevision)},
			[]string{"Min revision", optionalInt(info.MinRevision)},
			[]string{"Kinds", joinKinds(info.Kinds, ", ")},
			[]string{"Remote changes", strconv.FormatBool(info.RemoteChanges)},
			[]string{"Records", strconv.Itoa(info.Records)},
		)
		if len(info.Unrecognized) > 0 {
			data = append(data, []string{"Unrecognized kinds", joinKinds(info.Unrecognized, ", ")})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Described in %v. History backend: %s\n", duration, cfg.HistoryBackend)
	return err
}

// revisionCSVHeader lists the columns of the CSV output.
var revisionCSVHeader = []string{
	"directory",
	"backend",
	"versioned",
	"repository",
	"path",
	"revision",
	"file_name_safe_revision",
	"max_revision",
	"min_revision",
	"kinds",
	"remote_changes",
	"records",
}

// writeRevisionCSV writes the described directory as a single CSV row.
func writeRevisionCSV(w io.Writer, info schema.RevisionInfo) error {
	return writeCSVWithHeader(w, revisionCSVHeader, func(cw *csv.Writer) error {
		return cw.Write([]string{
			info.Directory,
			string(info.Backend),
			strconv.FormatBool(info.Versioned),
			info.Repository,
			info.Path,
			info.Revision,
			info.FileNameSafeRevision,
			optionalInt(info.MaxRevision),
			optionalInt(info.MinRevision),
			joinKinds(info.Kinds, "|"),
			strconv.FormatBool(info.RemoteChanges),
			strconv.Itoa(info.Records),
		})
	})
}

// writeRevisionProperties writes the four build properties as a Java properties file.
func writeRevisionProperties(w io.Writer, info schema.RevisionInfo, prefix string) error {
	if prefix == "" {
		prefix = schema.DefaultPropertyPrefix
	}
	props := info.Properties(prefix)
	for _, key := range schema.PropertyKeys {
		name := prefix + "." + key
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, escapePropertyValue(props[name])); err != nil {
			return err
		}
	}
	return nil
}

var propertyEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// escapePropertyValue escapes the characters a properties reader would otherwise interpret.
func escapePropertyValue(v string) string {
	v = propertyEscaper.Replace(v)
	if strings.HasPrefix(v, " ") {
		v = `\` + v
	}
	return v
}

func joinKinds(kinds []schema.StatusKind, sep string) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, sep)
}
