// Package repository implements the Repository session: resolving a
// repository root by its marker directory, constructing and validating a
// FileSet from user-supplied paths, and the default file-filter and
// tree-walk policy shared by the cache and the CLI's listing commands.
//
// Grounded on pkg/filesystem/mutagen.go from the mutagen-io/mutagen codebase, which
// resolves a fixed application data directory under the user's home and
// joins well-known filenames onto it. That convention is repurposed here
// from a fixed home-directory path into an upward search from a starting
// directory for a marker directory, since a repository's root here is
// discovered relative to the user's working directory rather than fixed
// in advance.
package repository

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/identity"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// FindRoot walks upward from startDir looking for a directory containing a
// markerName subdirectory, returning the first ancestor (inclusive of
// startDir) where one is found.
func FindRoot(startDir, markerName string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve starting directory")
	}

	for {
		markerPath := filepath.Join(dir, markerName)
		info, err := os.Stat(markerPath)
		if err == nil && info.IsDir() {
			return dir, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "unable to stat %s", markerPath)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", usererror.Newf("no %s marker directory found in %s or any parent directory", markerName, startDir)
		}
		dir = parent
	}
}

// ResolveRoot validates that rootDir (if non-empty) contains the marker
// directory, or, if rootDir is empty, searches upward from the current
// working directory.
func ResolveRoot(rootDir, markerName string) (string, error) {
	if rootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "unable to determine current working directory")
		}
		return FindRoot(cwd, markerName)
	}

	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve repository root")
	}
	markerPath := filepath.Join(abs, markerName)
	info, err := os.Stat(markerPath)
	if err != nil {
		return "", usererror.Newf("%s does not contain a %s marker directory", abs, markerName)
	}
	if !info.IsDir() {
		return "", usererror.Newf("%s exists but is not a directory", markerPath)
	}
	return abs, nil
}

// DefaultMarkerName is the marker directory name used when a caller does
// not specify one explicitly.
const DefaultMarkerName = identity.DefaultMarkerName
