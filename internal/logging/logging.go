// Package logging builds the diagnostic logger used for verbose traces and warnings.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleEncoderConfig returns a compact console encoder without timestamps or callers,
// since diagnostic lines are meant to be read next to build output.
func ConsoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.NameKey = "N"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// New returns a console logger writing to w. Verbose enables info-level output;
// otherwise only warnings and errors are emitted.
func New(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ConsoleEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core).Named("revstamp")
}

// NewStderr returns a console logger writing to stderr.
func NewStderr(verbose bool) *zap.Logger {
	return New(os.Stderr, verbose)
}
