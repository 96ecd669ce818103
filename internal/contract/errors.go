package contract

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrBackend marks failures raised by a version-control backend.
	ErrBackend = errors.New("version control backend failure")

	// ErrInvalidConfig marks configuration values that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// BackendError wraps a backend failure, keeping the backend's message and marking it with ErrBackend.
func BackendError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrBackend)
}

// ConfigError builds a validation error marked with ErrInvalidConfig.
func ConfigError(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfig)
}
