// Package cache implements the FileCache: an incrementally maintained
// mapping from absolute path to (mtime, content hash) for every eligible
// file under a repository root, backed by a write-ahead log so that
// interrupted hashing is never lost.
//
// Grounded on pkg/synchronization/core/scan.go from the mutagen-io/mutagen codebase
// for the streaming-hash-with-progress-sink shape (io.CopyBuffer into a
// hash.Hash, fed through a bounded copy buffer so that progress can be
// reported incrementally) and on pkg/synchronization/digest.go for the
// self-describing digest convention (realized here via pkg/digest). The
// mtime-sentinel reuse rule, the write-log recovery protocol, and the hint
// mechanism have no Mutagen equivalent and are authored directly for this
// cache's incremental-rescan design.
package cache

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/digest"
	"github.com/filemaster-org/filemaster/pkg/encoding"
	"github.com/filemaster-org/filemaster/pkg/filesystem"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

const (
	// largeFileLogThreshold is the size, in bytes, at or above which hashing
	// a file is logged as an informational message.
	largeFileLogThreshold = 16 * 1024 * 1024

	// copyBufferSize is the size of the buffer used to stream file content
	// through the hasher, matching Mutagen's scannerCopyBufferSize.
	copyBufferSize = 32 * 1024

	// mtimeProbeNamePrefix prefixes the scratch file created to sample the
	// filesystem's mtime granularity.
	mtimeProbeNamePrefix = ".filemaster-mtime-probe-"
)

// CachedFile records the last observed content hash for a file as of a given
// modification time. Mtime is UnixNano; zero is the "recompute next scan"
// sentinel, used for a file whose mtime can't be trusted to detect a
// future change.
type CachedFile struct {
	Path  string        `json:"path"`
	Mtime int64         `json:"mtime"`
	Hash  digest.Digest `json:"hash"`
}

// ProgressSink receives incremental progress events during Update. Unlike
// Mutagen's unconditional progress callbacks, both methods return an
// error so that a sink can abort an in-progress update (used, in particular,
// by tests simulating an interruption partway through a scan); Update
// propagates the first such error without rolling back any work already
// durably recorded in the write log.
type ProgressSink interface {
	// FileChecked is invoked once a file has been resolved (whether by
	// cache hit or by hashing).
	FileChecked() error
	// BytesRead is invoked with the number of content bytes hashed since
	// the last call, while a cache miss is being hashed.
	BytesRead(delta int64) error
}

// noopProgressSink discards all progress events.
type noopProgressSink struct{}

func (noopProgressSink) FileChecked() error    { return nil }
func (noopProgressSink) BytesRead(int64) error { return nil }

// NoopProgressSink is a ProgressSink that does nothing, for callers that
// don't need progress reporting.
var NoopProgressSink ProgressSink = noopProgressSink{}

// FilterFunc decides whether a path should be considered. For directories,
// returning false prunes the subtree; for files, returning false excludes
// just that file. Supplied by the repository layer, which owns the
// dot-prefix/.tsv filter policy.
type FilterFunc func(path string, isDir bool) bool

// FileCache is the incrementally maintained cache of (path, mtime, hash)
// records for a repository.
type FileCache struct {
	rootPath string
	store    *encoding.AtomicStore[[]CachedFile]
	log      *WriteLog
	logger   *logging.Logger
	filter   FilterFunc

	persisted []CachedFile
}

// cacheKey identifies a (path, mtime) pair for lookup-table purposes.
type cacheKey struct {
	path  string
	mtime int64
}

// Open loads (or, if absent, initializes) the file cache rooted at
// rootPath, persisted at storePath with a write log at storePath+"_log".
func Open(storePath, rootPath string, filter FilterFunc, logger *logging.Logger) (*FileCache, error) {
	store := encoding.NewAtomicStore[[]CachedFile](storePath, encoding.JSONLinesCodec[CachedFile]{}, logger)

	persisted, err := store.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unable to load file cache")
	}

	log, err := OpenWriteLog(storePath+"_log", logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open cache write log")
	}

	return &FileCache{
		rootPath:  rootPath,
		store:     store,
		log:       log,
		logger:    logger,
		filter:    filter,
		persisted: persisted,
	}, nil
}

// Clear replaces the persisted cache with an empty list. The write log is
// left untouched; the next Update still reuses any of its records whose
// (path, mtime) pair matches a file on disk, and ignores the rest.
func (c *FileCache) Clear() error {
	if err := c.store.Save(nil); err != nil {
		return errors.Wrap(err, "unable to clear file cache")
	}
	c.persisted = nil
	return nil
}

// GetCachedFiles returns the persisted entries whose path descends from the
// cache's root. Entries left over from a previous root are silently
// ignored, not discarded, so that switching roots back and forth doesn't
// lose history.
func (c *FileCache) GetCachedFiles() []CachedFile {
	var result []CachedFile
	for _, entry := range c.persisted {
		if isDescendant(c.rootPath, entry.Path) {
			result = append(result, entry)
		}
	}
	return result
}

// AddHint appends an optimistic CachedFile prediction to the write log
// without touching the persisted list. It is consulted on the next Update
// and, if not corroborated by the filesystem, is silently dropped.
func (c *FileCache) AddHint(hint CachedFile) error {
	return c.log.Append(hint)
}

// Update walks the repository tree, reusing cached hashes where the
// (path, mtime) pair is corroborated by the filesystem and the write log,
// and hashing everything else, reporting progress through sink.
func (c *FileCache) Update(sink ProgressSink) error {
	if sink == nil {
		sink = NoopProgressSink
	}

	currentMtime, err := c.probeCurrentMtime()
	if err != nil {
		return errors.Wrap(err, "unable to determine current mtime")
	}

	table := make(map[cacheKey]CachedFile, len(c.persisted))
	for _, entry := range c.persisted {
		table[cacheKey{entry.Path, entry.Mtime}] = entry
	}
	logRecords, err := c.log.Records()
	if err != nil {
		return errors.Wrap(err, "unable to read cache write log")
	}
	for _, entry := range logRecords {
		// Write-log records take precedence over persisted entries when
		// the (path, mtime) key collides.
		table[cacheKey{entry.Path, entry.Mtime}] = entry
	}

	var newEntries []CachedFile
	walkErr := filesystem.Walk(c.rootPath, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == c.rootPath {
			return nil
		}

		isDir := info.IsDir()
		if !c.filter(path, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isDir {
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		observedMtime := info.ModTime().UnixNano()
		key := cacheKey{path, observedMtime}

		entry, hit := table[key]
		if !hit {
			entry, err = c.hashFile(path, info, observedMtime, currentMtime, sink)
			if err != nil {
				return err
			}
			if err := c.log.Append(entry); err != nil {
				return errors.Wrap(err, "unable to append cache write log record")
			}
		}

		if err := sink.FileChecked(); err != nil {
			return err
		}

		newEntries = append(newEntries, entry)
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	if err := c.store.Save(newEntries); err != nil {
		return errors.Wrap(err, "unable to save file cache")
	}
	c.persisted = newEntries

	if err := c.log.Flush(); err != nil {
		return errors.Wrap(err, "unable to flush cache write log")
	}

	return nil
}

// hashFile computes the content digest of the file at path, streaming its
// content through the digest hasher in copyBufferSize chunks and reporting
// each chunk to sink.
func (c *FileCache) hashFile(path string, info os.FileInfo, observedMtime, currentMtime int64, sink ProgressSink) (CachedFile, error) {
	if info.Size() >= largeFileLogThreshold {
		c.logger.Printf("hashing large file %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	}

	file, err := os.Open(path)
	if err != nil {
		return CachedFile{}, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	hasher := digest.Hasher()
	buffer := make([]byte, copyBufferSize)
	for {
		n, readErr := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			if sinkErr := sink.BytesRead(int64(n)); sinkErr != nil {
				return CachedFile{}, sinkErr
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return CachedFile{}, errors.Wrapf(readErr, "unable to read %s", path)
		}
	}

	mtime := observedMtime
	if observedMtime >= currentMtime {
		mtime = 0
	}

	return CachedFile{Path: path, Mtime: mtime, Hash: digest.FromHash(hasher)}, nil
}

// probeCurrentMtime samples the filesystem's mtime granularity by creating
// and stat'ing a scratch file beside the cache store, then removing it.
func (c *FileCache) probeCurrentMtime() (int64, error) {
	dir := filepath.Dir(c.store.Path())
	probe, err := os.CreateTemp(dir, mtimeProbeNamePrefix+uuid.NewString())
	if err != nil {
		return 0, errors.Wrap(err, "unable to create mtime probe file")
	}
	name := probe.Name()
	probe.Close()
	defer os.Remove(name)

	info, err := os.Stat(name)
	if err != nil {
		return 0, errors.Wrap(err, "unable to stat mtime probe file")
	}
	return info.ModTime().UnixNano(), nil
}

// isDescendant reports whether path is root or a descendant of root.
func isDescendant(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
