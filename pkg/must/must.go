// Package must provides small wrappers around operations that return an
// error but whose failure, in the specific place they're called, can only be
// logged rather than meaningfully handled (e.g. best-effort cleanup).
//
// Grounded on pkg/must/must.go from the mutagen-io/mutagen codebase, trimmed to the
// handful of operations this module actually performs.
package must

import (
	"io"
	"os"

	"github.com/filemaster-org/filemaster/pkg/logging"
)

// Close closes c, logging a warning if doing so fails.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the file at name, logging a warning if doing so fails.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}
