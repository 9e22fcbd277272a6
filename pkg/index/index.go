// Package index implements the FileIndex: the persistent, content-addressed
// table mapping a file's hash to its intended destination path and every
// absolute path at which content with that hash has ever been observed.
//
// There is no Mutagen equivalent of a content-addressed intended-path
// table; this package is new code authored directly for this store. It
// reuses the generic AtomicStore[T] from pkg/encoding (the same
// mechanism FileCache uses), following Mutagen's "one persisted value,
// atomic save" shape used throughout its session/state persistence layer,
// with a JSON-document codec since the index is a single document rather
// than a line-delimited list.
package index

import (
	"os"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/cache"
	"github.com/filemaster-org/filemaster/pkg/digest"
	"github.com/filemaster-org/filemaster/pkg/encoding"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

// IndexEntry is one content hash's record: where it should end up
// (IntendedPath, nil if not yet decided) and every absolute path at which
// that content has ever been seen.
type IndexEntry struct {
	Hash         digest.Digest `json:"hash"`
	IntendedPath *string       `json:"intended_path"`
	SeenPaths    []string      `json:"seen_paths"`
}

// AggregatedFile is the ephemeral, per-session join of an IndexEntry with
// the CachedFiles currently on disk that carry its hash. An empty
// CachedFiles means the content is indexed but missing from the tree; more
// than one means the content is duplicated.
type AggregatedFile struct {
	IndexEntry  IndexEntry
	CachedFiles []cache.CachedFile
}

// FileIndex is the persisted table of IndexEntries.
type FileIndex struct {
	store     *encoding.AtomicStore[[]IndexEntry]
	persisted []IndexEntry
}

// Open loads (or, if absent, initializes empty) the file index at path.
func Open(path string, logger *logging.Logger) (*FileIndex, error) {
	store := encoding.NewAtomicStore[[]IndexEntry](path, encoding.JSONDocumentCodec[[]IndexEntry]{}, logger)

	persisted, err := store.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "unable to load file index")
	}

	return &FileIndex{store: store, persisted: persisted}, nil
}

// Entries returns the currently loaded index entries, in persisted order.
func (idx *FileIndex) Entries() []IndexEntry {
	return idx.persisted
}

// Aggregate joins cachedFiles against the index by hash, synthesizing a new
// IndexEntry for any hash not yet present and recording every newly seen
// path. It is a pure function of its receiver's loaded state and its
// argument: it does not persist anything, leaving that to a later Set call.
func (idx *FileIndex) Aggregate(cachedFiles []cache.CachedFile) []AggregatedFile {
	byHash := make(map[digest.Digest]*AggregatedFile, len(idx.persisted))
	var order []digest.Digest

	for _, entry := range idx.persisted {
		byHash[entry.Hash] = &AggregatedFile{IndexEntry: entry}
		order = append(order, entry.Hash)
	}

	for _, c := range cachedFiles {
		af, ok := byHash[c.Hash]
		if !ok {
			af = &AggregatedFile{IndexEntry: IndexEntry{Hash: c.Hash}}
			byHash[c.Hash] = af
			order = append(order, c.Hash)
		}
		af.CachedFiles = append(af.CachedFiles, c)
		if !containsPath(af.IndexEntry.SeenPaths, c.Path) {
			af.IndexEntry.SeenPaths = append(af.IndexEntry.SeenPaths, c.Path)
		}
	}

	result := make([]AggregatedFile, 0, len(order))
	for _, h := range order {
		result = append(result, *byHash[h])
	}
	return result
}

// Set overwrites the persisted index with entries.
func (idx *FileIndex) Set(entries []IndexEntry) error {
	if err := idx.store.Save(entries); err != nil {
		return errors.Wrap(err, "unable to save file index")
	}
	idx.persisted = entries
	return nil
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
