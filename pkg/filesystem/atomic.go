// Package filesystem provides the small set of filesystem primitives this
// module needs: atomic whole-file writes, a deterministic recursive walk,
// and directory-content listing. Grounded on pkg/filesystem/atomic.go,
// pkg/filesystem/walk.go, and pkg/filesystem/directory.go from Mutagen
// repository.
package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/logging"
	"github.com/filemaster-org/filemaster/pkg/must"
)

// TemporaryNamePrefix is the prefix used for intermediate files created
// during atomic operations, chosen to sort and grep distinctly from regular
// repository content.
const TemporaryNamePrefix = ".filemaster-tmp-"

// WriteFileAtomic writes data to path using an intermediate temporary file
// that is swapped into place with a rename, so that readers never observe a
// partially written file.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), TemporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}

	if _, err = temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to write data to temporary file")
	}

	if err = temporary.Sync(); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to sync temporary file")
	}

	if err = temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to close temporary file")
	}

	if err = os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to change file permissions")
	}

	if err = os.Rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to rename file into place")
	}

	return nil
}
