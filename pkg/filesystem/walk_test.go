package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkSortedOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b", "a", "c"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(name), 0600); err != nil {
			t.Fatal("unable to seed file:", err)
		}
	}

	var visited []string
	err := Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root {
			visited = append(visited, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		t.Fatal("Walk failed:", err)
	}

	expected := []string{"a", "b", "c"}
	if len(visited) != len(expected) {
		t.Fatalf("visited %v, expected %v", visited, expected)
	}
	for i := range expected {
		if visited[i] != expected[i] {
			t.Errorf("visit order mismatch at %d: %s != %s", i, visited[i], expected[i])
		}
	}
}

func TestWalkSkipsSymlinksBelowRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "real"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Skip("symlinks unsupported in this environment")
	}

	var visited []string
	err := Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != root {
			visited = append(visited, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		t.Fatal("Walk failed:", err)
	}

	if len(visited) != 1 || visited[0] != "real" {
		t.Errorf("expected only 'real' to be visited, got %v", visited)
	}
}
