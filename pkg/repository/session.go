package repository

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/cache"
	"github.com/filemaster-org/filemaster/pkg/index"
	"github.com/filemaster-org/filemaster/pkg/logging"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

const (
	// CacheStoreName is the filename, under the marker directory, of the
	// FileCache's persisted store.
	CacheStoreName = "filecache"
	// IndexStoreName is the filename, under the marker directory, of the
	// FileIndex's persisted store.
	IndexStoreName = "fileindex"
)

// Options configures opening a Repository session.
type Options struct {
	// RootDir is the repository root. If empty, it is located by an
	// upward search from the current working directory.
	RootDir string
	// MarkerName overrides the marker directory name. Defaults to
	// DefaultMarkerName.
	MarkerName string
	// ClearCache, if set, discards the persisted cache before any update.
	ClearCache bool
	// UpdateCache, if set, runs a full cache update.
	UpdateCache bool
	// ProgressSink receives cache update progress, if UpdateCache is set.
	ProgressSink cache.ProgressSink
	// Filter overrides the file-filter policy. Defaults to DefaultFilter.
	Filter FilterFunc
	Logger *logging.Logger
}

// Repository is an open session over a repository root: its resolved file
// cache and file index, joined into the aggregated view handed to callers.
type Repository struct {
	Root            string
	Marker          string
	AggregatedFiles []index.AggregatedFile
	Filter          FilterFunc

	cache  *cache.FileCache
	index  *index.FileIndex
	logger *logging.Logger
}

// Open resolves the repository root, validates its store files, constructs
// the cache and index, optionally clears and/or updates the cache, and
// aggregates the result. The returned Repository's index is not yet
// persisted; call Commit on normal completion.
func Open(opts Options) (*Repository, error) {
	marker := opts.MarkerName
	if marker == "" {
		marker = DefaultMarkerName
	}
	filter := opts.Filter
	if filter == nil {
		filter = DefaultFilter
	}

	root, err := ResolveRoot(opts.RootDir, marker)
	if err != nil {
		return nil, err
	}
	markerDir := filepath.Join(root, marker)
	cachePath := filepath.Join(markerDir, CacheStoreName)
	indexPath := filepath.Join(markerDir, IndexStoreName)

	for _, storePath := range []string{cachePath, indexPath} {
		info, err := os.Stat(storePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, usererror.Newf("repository is not initialized: missing %s, run init first", storePath)
			}
			return nil, errors.Wrapf(err, "unable to stat %s", storePath)
		}
		if !info.Mode().IsRegular() {
			return nil, usererror.Newf("repository store file is not a regular file: %s", storePath)
		}
	}

	fileCache, err := cache.Open(cachePath, root, filter, opts.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open file cache")
	}
	fileIndex, err := index.Open(indexPath, opts.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open file index")
	}

	if opts.ClearCache {
		if opts.UpdateCache {
			opts.Logger.Printf("clearing cache before update")
		} else {
			opts.Logger.Printf("clearing cache")
		}
		if err := fileCache.Clear(); err != nil {
			return nil, errors.Wrap(err, "unable to clear cache")
		}
	}

	if opts.UpdateCache {
		sink := opts.ProgressSink
		if sink == nil {
			sink = cache.NoopProgressSink
		}
		if err := fileCache.Update(sink); err != nil {
			return nil, errors.Wrap(err, "unable to update cache")
		}
	}

	aggregated := fileIndex.Aggregate(fileCache.GetCachedFiles())

	return &Repository{
		Root:            root,
		Marker:          marker,
		AggregatedFiles: aggregated,
		Filter:          filter,
		cache:           fileCache,
		index:           fileIndex,
		logger:          opts.Logger,
	}, nil
}

// Commit persists the (possibly mutated) aggregated index entries back to
// the file index. Callers must only call Commit after a session completes
// without error; on error, the index should be left untouched.
func (r *Repository) Commit() error {
	entries := make([]index.IndexEntry, len(r.AggregatedFiles))
	for i, af := range r.AggregatedFiles {
		entries[i] = af.IndexEntry
	}
	return r.index.Set(entries)
}

// Cache returns the underlying file cache, for callers that need direct
// access. (reset --cache does not use it; it clears the cache through
// Options.ClearCache.)
func (r *Repository) Cache() *cache.FileCache {
	return r.cache
}

// Logger returns the logger this repository was opened with, for callers
// that need to log in the same hierarchy (such as the apply planner's
// dry-run output).
func (r *Repository) Logger() *logging.Logger {
	return r.logger
}

// With opens a Repository, invokes fn, and on fn's success commits the
// index. On fn's error, the index is left untouched: a failed command
// must never persist a partial change to the intended-path assignment.
func With(opts Options, fn func(*Repository) error) error {
	repo, err := Open(opts)
	if err != nil {
		return err
	}
	if err := fn(repo); err != nil {
		return err
	}
	return repo.Commit()
}
