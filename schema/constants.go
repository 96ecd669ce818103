package schema

// Custom string types for type safety.
type (
	// StatusKind represents the condition of a path relative to its version-control baseline.
	// Values match the item names used by Subversion's XML status output.
	StatusKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history tracking.
	DatabaseBackend string

	// BackendKind represents the version-control backend used to read a working copy.
	BackendKind string
)

// All status kinds known to the encoder.
const (
	StatusNone        StatusKind = "none"
	StatusNormal      StatusKind = "normal"
	StatusModified    StatusKind = "modified"
	StatusAdded       StatusKind = "added"
	StatusDeleted     StatusKind = "deleted"
	StatusUnversioned StatusKind = "unversioned"
	StatusMissing     StatusKind = "missing"
	StatusReplaced    StatusKind = "replaced"
	StatusConflicted  StatusKind = "conflicted"
	StatusObstructed  StatusKind = "obstructed"
	StatusIgnored     StatusKind = "ignored"
	StatusIncomplete  StatusKind = "incomplete"
	StatusExternal    StatusKind = "external"
)

// All output modes supported.
const (
	TextOut       OutputMode = "text" // default
	JSONOut       OutputMode = "json"
	YAMLOut       OutputMode = "yaml"
	CSVOut        OutputMode = "csv"
	PropertiesOut OutputMode = "properties"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All version-control backends supported.
const (
	AutoVCS BackendKind = "auto" // default
	SVNVCS  BackendKind = "svn"
	GitVCS  BackendKind = "git"
)

// UnversionedToken is rendered for both alphabets when the directory is not under version control.
const UnversionedToken = "unversioned"

// DefaultPropertyPrefix is the key prefix used by the properties output.
const DefaultPropertyPrefix = "workingCopyDirectory"

// KnownStatusKinds lists every status kind in the closed enumeration.
var KnownStatusKinds = []StatusKind{
	StatusNone,
	StatusNormal,
	StatusModified,
	StatusAdded,
	StatusDeleted,
	StatusUnversioned,
	StatusMissing,
	StatusReplaced,
	StatusConflicted,
	StatusObstructed,
	StatusIgnored,
	StatusIncomplete,
	StatusExternal,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:       {},
	JSONOut:       {},
	YAMLOut:       {},
	CSVOut:        {},
	PropertiesOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidBackendKinds lists all valid version-control backends.
var ValidBackendKinds = map[BackendKind]struct{}{
	AutoVCS: {},
	SVNVCS:  {},
	GitVCS:  {},
}
