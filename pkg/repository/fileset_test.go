package repository

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/filemaster-org/filemaster/pkg/cache"
	"github.com/filemaster-org/filemaster/pkg/index"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LevelError, &bytes.Buffer{})
}

type fixture struct {
	root       string
	aggregated []index.AggregatedFile
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, DefaultMarkerName), 0755); err != nil {
		t.Fatal(err)
	}

	fc, err := cache.Open(filepath.Join(root, DefaultMarkerName, CacheStoreName), root, DefaultFilter, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Update(cache.NoopProgressSink); err != nil {
		t.Fatal(err)
	}
	idx, err := index.Open(filepath.Join(root, DefaultMarkerName, IndexStoreName), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	aggregated := idx.Aggregate(fc.GetCachedFiles())

	return fixture{root: root, aggregated: aggregated}
}

func TestBuildFileSetMatchesExplicitFile(t *testing.T) {
	f := newFixture(t, map[string]string{"a.txt": "hello"})

	set, err := BuildFileSet(f.root, []string{filepath.Join(f.root, "a.txt")}, f.aggregated, DefaultFilter)
	if err != nil {
		t.Fatal("BuildFileSet failed:", err)
	}
	if len(set.Files) != 1 || filepath.Base(set.Files[0].Path) != "a.txt" {
		t.Errorf("files = %+v", set.Files)
	}
}

func TestBuildFileSetExpandsDirectorySorted(t *testing.T) {
	f := newFixture(t, map[string]string{
		"sub/b.txt": "b",
		"sub/a.txt": "a",
	})

	set, err := BuildFileSet(f.root, []string{f.root}, f.aggregated, DefaultFilter)
	if err != nil {
		t.Fatal("BuildFileSet failed:", err)
	}
	if len(set.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(set.Files))
	}
	if set.Files[0].Path > set.Files[1].Path {
		t.Errorf("expected files sorted by path, got %+v", set.Files)
	}
}

func TestBuildFileSetRejectsOutsideRoot(t *testing.T) {
	f := newFixture(t, map[string]string{"a.txt": "hello"})
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "x.txt")
	if err := os.WriteFile(outsideFile, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := BuildFileSet(f.root, []string{outsideFile}, f.aggregated, DefaultFilter); err == nil {
		t.Error("expected BuildFileSet to reject a path outside the repository")
	}
}

func TestBuildFileSetRejectsMissingPath(t *testing.T) {
	f := newFixture(t, map[string]string{"a.txt": "hello"})
	if _, err := BuildFileSet(f.root, []string{filepath.Join(f.root, "missing.txt")}, f.aggregated, DefaultFilter); err == nil {
		t.Error("expected BuildFileSet to reject a nonexistent path")
	}
}

func TestBuildFileSetPreservesOverlappingDuplicates(t *testing.T) {
	f := newFixture(t, map[string]string{"sub/a.txt": "a"})

	set, err := BuildFileSet(f.root, []string{
		filepath.Join(f.root, "sub", "a.txt"),
		filepath.Join(f.root, "sub"),
	}, f.aggregated, DefaultFilter)
	if err != nil {
		t.Fatal("BuildFileSet failed:", err)
	}
	if len(set.Files) != 2 {
		t.Fatalf("expected the overlapping selection to be preserved, got %+v", set.Files)
	}
}

func TestBuildFileSetDirectoryExpansionHonorsFilter(t *testing.T) {
	f := newFixture(t, map[string]string{
		"keep.txt":   "keep",
		"ignore.tsv": "ignore",
	})

	set, err := BuildFileSet(f.root, []string{f.root}, f.aggregated, DefaultFilter)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Files) != 1 || filepath.Base(set.Files[0].Path) != "keep.txt" {
		t.Errorf("files = %+v", set.Files)
	}
}
