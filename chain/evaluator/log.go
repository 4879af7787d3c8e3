// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package evaluator

import (
	"github.com/decred/slog"
)

// log is initialized with no output filters, so this package performs no
// logging until the embedding node calls UseLogger.
var log = slog.Disabled

// DisableLog disables all log output from this package. Logging is
// disabled by default until UseLogger is called.
func DisableLog() {
	log = slog.Disabled
}

// UseLogger directs this package's log output at the given Logger.
func UseLogger(logger slog.Logger) {
	log = logger
}
