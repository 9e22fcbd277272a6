package repository

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/filesystem"
	"github.com/filemaster-org/filemaster/pkg/logging"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// Init creates the marker directory and empty cache/index store files at
// rootDir, failing if the marker already exists.
func Init(rootDir, markerName string, logger *logging.Logger) error {
	if markerName == "" {
		markerName = DefaultMarkerName
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return errors.Wrap(err, "unable to resolve repository root")
	}
	markerDir := filepath.Join(abs, markerName)

	if _, err := os.Stat(markerDir); err == nil {
		return usererror.Newf("%s already exists", markerDir)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "unable to stat %s", markerDir)
	}

	if err := os.MkdirAll(markerDir, 0755); err != nil {
		return errors.Wrap(err, "unable to create marker directory")
	}

	cachePath := filepath.Join(markerDir, CacheStoreName)
	if err := filesystem.WriteFileAtomic(cachePath, nil, 0600, logger); err != nil {
		return errors.Wrap(err, "unable to create empty file cache")
	}
	indexPath := filepath.Join(markerDir, IndexStoreName)
	if err := filesystem.WriteFileAtomic(indexPath, []byte("[]"), 0600, logger); err != nil {
		return errors.Wrap(err, "unable to create empty file index")
	}

	return nil
}
