package repository

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRootSearchesUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".filemaster"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRoot(nested, ".filemaster")
	if err != nil {
		t.Fatal("FindRoot failed:", err)
	}
	resolvedRoot, _ := filepath.EvalSymlinks(root)
	resolvedFound, _ := filepath.EvalSymlinks(found)
	if resolvedFound != resolvedRoot {
		t.Errorf("found %s, want %s", found, root)
	}
}

func TestFindRootFailsWithoutMarker(t *testing.T) {
	root := t.TempDir()
	if _, err := FindRoot(root, ".filemaster"); err == nil {
		t.Error("expected FindRoot to fail without a marker directory anywhere above")
	}
}

func TestResolveRootValidatesExplicitDir(t *testing.T) {
	root := t.TempDir()
	if _, err := ResolveRoot(root, ".filemaster"); err == nil {
		t.Error("expected ResolveRoot to fail when the marker is absent")
	}
	if err := os.Mkdir(filepath.Join(root, ".filemaster"), 0755); err != nil {
		t.Fatal(err)
	}
	resolved, err := ResolveRoot(root, ".filemaster")
	if err != nil {
		t.Fatal("ResolveRoot failed:", err)
	}
	want, _ := filepath.Abs(root)
	if resolved != want {
		t.Errorf("resolved %s, want %s", resolved, want)
	}
}
