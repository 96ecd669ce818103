package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// runsTable holds one row per recorded describe run.
const runsTable = "revstamp_runs"

// runColumns lists the insertable columns in insert and select order.
var runColumns = []string{
	"run_uuid", "recorded_at", "directory", "backend", "repository", "wc_path",
	"revision", "file_name_safe_revision", "max_revision", "min_revision",
	"remote_changes", "kinds", "config_params", "run_duration_ms",
}

// SQLHistoryStore implements the HistoryStore interface on top of database/sql.
type SQLHistoryStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &SQLHistoryStore{} // Compile-time check

// driverName maps a history backend to its registered database/sql driver.
func driverName(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", errors.Newf("unsupported history backend: %s", backend)
	}
}

// openDB opens and pings the database for the backend.
// An empty SQLite connection string falls back to the default file in the home directory.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", backend)
	}
	if backend == schema.SQLiteBackend {
		// One connection avoids "database is locked" and keeps :memory: databases shared
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var hint string
		switch backend {
		case schema.MySQLBackend:
			hint = "check that MySQL is running; connection strings look like user:password@tcp(host:port)/dbname?parseTime=true"
		case schema.PostgreSQLBackend:
			hint = "check that PostgreSQL is running; connection strings look like host=localhost port=5432 user=postgres dbname=revstamp"
		default:
			hint = "check that the directory holding the database file is writable"
		}
		return nil, errors.WithHint(errors.Wrapf(err, "failed to connect to %s database", backend), hint)
	}
	return db, nil
}

// NewHistoryStore creates a HistoryStore for the backend.
// The none backend yields a store that records nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*SQLHistoryStore, error) {
	if backend == schema.NoneBackend || backend == "" {
		return &SQLHistoryStore{backend: schema.NoneBackend}, nil
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create table %s", runsTable)
	}
	return &SQLHistoryStore{db: db, backend: backend}, nil
}

// createRunsQuery returns the CREATE TABLE statement for the backend's dialect.
func createRunsQuery(backend schema.DatabaseBackend) string {
	table := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				recorded_at DATETIME(6) NOT NULL,
				directory VARCHAR(1024) NOT NULL,
				backend VARCHAR(16) NOT NULL,
				repository VARCHAR(1024) NOT NULL,
				wc_path VARCHAR(1024) NOT NULL,
				revision VARCHAR(255) NOT NULL,
				file_name_safe_revision VARCHAR(255) NOT NULL,
				max_revision BIGINT,
				min_revision BIGINT,
				remote_changes BOOLEAN NOT NULL,
				kinds VARCHAR(255) NOT NULL,
				config_params TEXT,
				run_duration_ms INT
			);
		`, table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid UUID NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL,
				directory TEXT NOT NULL,
				backend TEXT NOT NULL,
				repository TEXT NOT NULL,
				wc_path TEXT NOT NULL,
				revision TEXT NOT NULL,
				file_name_safe_revision TEXT NOT NULL,
				max_revision BIGINT,
				min_revision BIGINT,
				remote_changes BOOLEAN NOT NULL,
				kinds TEXT NOT NULL,
				config_params TEXT,
				run_duration_ms INT
			);
		`, table)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				recorded_at TEXT NOT NULL,
				directory TEXT NOT NULL,
				backend TEXT NOT NULL,
				repository TEXT NOT NULL,
				wc_path TEXT NOT NULL,
				revision TEXT NOT NULL,
				file_name_safe_revision TEXT NOT NULL,
				max_revision INTEGER,
				min_revision INTEGER,
				remote_changes INTEGER NOT NULL,
				kinds TEXT NOT NULL,
				config_params TEXT,
				run_duration_ms INTEGER
			);
		`, table)
	}
}

// placeholders returns n bind parameters in the backend's syntax, starting at position start.
func placeholders(backend schema.DatabaseBackend, start, n int) string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", start+i)
		} else {
			out[i] = "?"
		}
	}
	return strings.Join(out, ", ")
}

// Record inserts a run and returns its id. The none backend returns 0.
func (hs *SQLHistoryStore) Record(run schema.HistoryRecord) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}
	recordedAt := run.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	args := []any{
		run.RunUUID, formatTime(recordedAt, hs.backend), run.Directory, string(run.Backend),
		run.Repository, run.Path, run.Revision, run.FileNameSafeRevision, run.MaxRevision,
		run.MinRevision, run.RemoteChanges, run.Kinds, run.ConfigParams, run.DurationMs,
	}
	table := quoteTableName(runsTable, hs.backend)
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(runColumns, ", "), placeholders(hs.backend, 1, len(runColumns)))

	var runID int64
	var err error
	switch hs.backend {
	case schema.PostgreSQLBackend:
		err = hs.db.QueryRow(insert+" RETURNING run_id", args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		if result, err = hs.db.Exec(insert, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}
	return runID, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns every run.
func (hs *SQLHistoryStore) List(limit int) ([]schema.HistoryRecord, error) {
	if hs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT run_id, %s FROM %s ORDER BY run_id DESC",
		strings.Join(runColumns, ", "), quoteTableName(runsTable, hs.backend))
	var args []any
	if limit > 0 {
		query += " LIMIT " + placeholders(hs.backend, 1, 1)
		args = append(args, limit)
	}

	rows, err := hs.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HistoryRecord
	for rows.Next() {
		record, err := hs.scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating runs")
	}
	return results, nil
}

// scanRun reads one row selected with run_id followed by runColumns.
func (hs *SQLHistoryStore) scanRun(rows *sql.Rows) (schema.HistoryRecord, error) {
	var record schema.HistoryRecord
	var backend string
	var recordedAt any
	if hs.backend == schema.SQLiteBackend {
		recordedAt = new(string)
	} else {
		recordedAt = &record.RecordedAt
	}
	if err := rows.Scan(&record.RunID, &record.RunUUID, recordedAt, &record.Directory, &backend,
		&record.Repository, &record.Path, &record.Revision, &record.FileNameSafeRevision,
		&record.MaxRevision, &record.MinRevision, &record.RemoteChanges, &record.Kinds,
		&record.ConfigParams, &record.DurationMs); err != nil {
		return record, errors.Wrap(err, "failed to scan run")
	}
	if s, ok := recordedAt.(*string); ok {
		t, err := time.Parse(time.RFC3339Nano, *s)
		if err != nil {
			return record, errors.Wrap(err, "failed to parse recorded_at")
		}
		record.RecordedAt = t
	}
	record.Backend = schema.BackendKind(backend)
	return record, nil
}

// GetStatus returns status information about the history store.
func (hs *SQLHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:   string(hs.backend),
		Connected: hs.db != nil,
	}
	if hs.db == nil {
		return status, nil
	}

	table := quoteTableName(runsTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT directory) FROM %s", table))
	if err := row.Scan(&status.TotalRuns, &status.DistinctDirectories); err != nil {
		return status, errors.Wrap(err, "failed to get total runs")
	}
	if status.TotalRuns == 0 {
		return status, nil
	}

	lastRun := fmt.Sprintf("SELECT run_id, recorded_at FROM %s ORDER BY run_id DESC LIMIT 1", table)
	lastTime, err := hs.scanTime(hs.db.QueryRow(lastRun), &status.LastRunID)
	if err != nil {
		return status, errors.Wrap(err, "failed to get last run info")
	}
	status.LastRunTime = lastTime

	var oldestID int64
	oldestRun := fmt.Sprintf("SELECT run_id, recorded_at FROM %s ORDER BY run_id ASC LIMIT 1", table)
	oldestTime, err := hs.scanTime(hs.db.QueryRow(oldestRun), &oldestID)
	if err != nil {
		return status, errors.Wrap(err, "failed to get oldest run time")
	}
	status.OldestRunTime = oldestTime
	return status, nil
}

// scanTime scans a (run_id, recorded_at) row, handling the SQLite text encoding.
func (hs *SQLHistoryStore) scanTime(row *sql.Row, id *int64) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(id, &s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(id, &t)
	return t, err
}

// Close closes the underlying connection.
func (hs *SQLHistoryStore) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// formatTime converts a time to the storage format of the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// quoteTableName returns the quoted table name for the backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}
