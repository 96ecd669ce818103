package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/huangsam/revstamp/schema"
)

// Color variables for console output.
var (
	CleanColor   = color.New(color.FgGreen)           // CleanColor marks a working copy without local changes.
	ChangedColor = color.New(color.FgYellow)          // ChangedColor marks local or remote changes.
	BrokenColor  = color.New(color.FgRed, color.Bold) // BrokenColor marks conflicts and damaged working copies.
	NeutralColor = color.New(color.FgCyan)            // NeutralColor marks directories outside version control.
)

// brokenKinds are the kinds that need manual repair before a build is trustworthy.
var brokenKinds = []schema.StatusKind{
	schema.StatusConflicted,
	schema.StatusMissing,
	schema.StatusObstructed,
	schema.StatusIncomplete,
}

// GetTokenColor picks the console color for a described directory.
func GetTokenColor(info schema.RevisionInfo) *color.Color {
	if !info.Versioned {
		return NeutralColor
	}
	changed := info.RemoteChanges
	for _, k := range info.Kinds {
		for _, b := range brokenKinds {
			if k == b {
				return BrokenColor
			}
		}
		if !k.IsQuiet() {
			changed = true
		}
	}
	if changed {
		return ChangedColor
	}
	return CleanColor
}

// GetColorToken returns the token wrapped in its console color.
func GetColorToken(info schema.RevisionInfo, token string) string {
	return GetTokenColor(info).Sprint(token)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided file path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Hint: %s\n", strings.Join(hints, "; "))
	}
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".revstamp_history.db"
	}
	return filepath.Join(homeDir, ".revstamp_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, errors.Newf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
