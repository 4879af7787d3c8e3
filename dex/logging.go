// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package dex holds the logging primitives shared by every ledger-core
// package. Each chain/* package that can emit diagnostic or warning output
// carries its own log.go following dex/logging.go's pattern: a package-level
// log variable defaulting to slog.Disabled, with UseLogger and DisableLog
// exported so an embedding node can route that package's output into its
// own backend. No package logs by default.
package dex

import (
	"fmt"

	"github.com/decred/slog"
)

// Logger is the type every subsystem's package-level log variable is
// declared as. Backend constructors accept a Logger; all logging within a
// subsystem goes through the one it was handed.
type Logger = slog.Logger

// LoggerMaker creates per-subsystem Loggers from a single slog.Backend,
// applying whatever level was configured for that subsystem (or
// DefaultLevel, if none was). A node wires one LoggerMaker at startup and
// hands each package its own Logger from it via UseLogger.
type LoggerMaker struct {
	*slog.Backend
	DefaultLevel slog.Level
	Levels       map[string]slog.Level
}

// SubLogger creates a Logger with a subsystem name "parent[name]", using any
// known log level for the parent subsystem, defaulting to the DefaultLevel if
// the parent does not have an explicitly set level.
func (lm *LoggerMaker) SubLogger(parent, name string) Logger {
	// Use the parent logger's log level, if set.
	level, ok := lm.Levels[parent]
	if !ok {
		level = lm.DefaultLevel
	}
	logger := lm.Backend.Logger(fmt.Sprintf("%s[%s]", parent, name))
	logger.SetLevel(level)
	return logger
}

// NewLogger creates a new Logger for the subsystem with the given name. If a
// log level is specified, it is used for the Logger. Otherwise the DefaultLevel
// is used.
func (lm *LoggerMaker) NewLogger(name string, level ...slog.Level) Logger {
	lvl := lm.DefaultLevel
	if len(level) > 0 {
		lvl = level[0]
	}
	logger := lm.Backend.Logger(name)
	logger.SetLevel(lvl)
	return logger
}
