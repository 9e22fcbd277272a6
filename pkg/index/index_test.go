package index

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/filemaster-org/filemaster/pkg/cache"
	"github.com/filemaster-org/filemaster/pkg/digest"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelError, &bytes.Buffer{})
}

func strPtr(s string) *string { return &s }

func TestAggregateSynthesizesNewEntries(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "fileindex"), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	cf := cache.CachedFile{Path: "/root/a.txt", Mtime: 0, Hash: digest.OfBytes([]byte("hello"))}
	aggregated := idx.Aggregate([]cache.CachedFile{cf})

	if len(aggregated) != 1 {
		t.Fatalf("expected 1 aggregated file, got %d", len(aggregated))
	}
	af := aggregated[0]
	if af.IndexEntry.Hash != cf.Hash {
		t.Errorf("hash mismatch: %s != %s", af.IndexEntry.Hash, cf.Hash)
	}
	if af.IndexEntry.IntendedPath != nil {
		t.Error("expected a freshly synthesized entry to have no intended path")
	}
	if len(af.IndexEntry.SeenPaths) != 1 || af.IndexEntry.SeenPaths[0] != cf.Path {
		t.Errorf("seen paths = %v", af.IndexEntry.SeenPaths)
	}
	if len(af.CachedFiles) != 1 || af.CachedFiles[0] != cf {
		t.Errorf("cached files = %v", af.CachedFiles)
	}
}

func TestAggregateReportsMissingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileindex")
	idx, err := Open(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	h := digest.OfBytes([]byte("gone"))
	if err := idx.Set([]IndexEntry{{Hash: h, IntendedPath: strPtr("keep/me.txt")}}); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	aggregated := reopened.Aggregate(nil)
	if len(aggregated) != 1 {
		t.Fatalf("expected 1 aggregated file, got %d", len(aggregated))
	}
	if len(aggregated[0].CachedFiles) != 0 {
		t.Error("expected missing content to have no cached files")
	}
	if aggregated[0].IndexEntry.IntendedPath == nil || *aggregated[0].IndexEntry.IntendedPath != "keep/me.txt" {
		t.Errorf("intended path not preserved: %+v", aggregated[0].IndexEntry)
	}
}

func TestAggregateReportsDuplicates(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "fileindex"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	h := digest.OfBytes([]byte("dup"))
	cached := []cache.CachedFile{
		{Path: "/root/a.txt", Hash: h},
		{Path: "/root/copy/a.txt", Hash: h},
	}
	aggregated := idx.Aggregate(cached)
	if len(aggregated) != 1 {
		t.Fatalf("expected one aggregated entry for the shared hash, got %d", len(aggregated))
	}
	if len(aggregated[0].CachedFiles) != 2 {
		t.Errorf("expected 2 cached files, got %d", len(aggregated[0].CachedFiles))
	}
	if len(aggregated[0].IndexEntry.SeenPaths) != 2 {
		t.Errorf("expected 2 seen paths, got %v", aggregated[0].IndexEntry.SeenPaths)
	}
}

func TestSeenPathsNeverShrink(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "fileindex"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	h := digest.OfBytes([]byte("x"))
	first := idx.Aggregate([]cache.CachedFile{{Path: "/root/a.txt", Hash: h}})
	if err := idx.Set([]IndexEntry{first[0].IndexEntry}); err != nil {
		t.Fatal(err)
	}

	second := idx.Aggregate([]cache.CachedFile{{Path: "/root/b.txt", Hash: h}})
	if len(second) != 1 {
		t.Fatalf("expected 1 aggregated file, got %d", len(second))
	}
	if len(second[0].IndexEntry.SeenPaths) != 2 {
		t.Errorf("expected seen paths to accumulate, got %v", second[0].IndexEntry.SeenPaths)
	}
}

func TestSetOverwritesPersistedIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileindex")
	idx, err := Open(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	h := digest.OfBytes([]byte("x"))
	if err := idx.Set([]IndexEntry{{Hash: h, IntendedPath: strPtr("a.txt")}}); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	entries := reopened.Entries()
	if len(entries) != 1 || entries[0].Hash != h {
		t.Errorf("entries after reopen = %+v", entries)
	}
}
