// Package logging provides the process-wide structured logger for matrixctl.
//
// The logger is initialized once at startup (from the root command) and
// subsystems obtain named children via Named. All diagnostic output goes to
// stderr so that stdout stays reserved for machine-readable command output
// (catalog listings, aggregation diffs).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init builds the global logger. When debug is true the level is lowered to
// DEBUG. Must be called before any subsystem starts logging; callers that
// skip Init get a no-op logger.
func Init(debug bool) error {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Development = true
	}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	return logger
}

// Named returns a child logger for the given subsystem.
func Named(subsystem string) *zap.Logger {
	return logger.Named(subsystem)
}

// Sync flushes buffered log entries. Intended for use on shutdown.
func Sync() {
	_ = logger.Sync()
}
