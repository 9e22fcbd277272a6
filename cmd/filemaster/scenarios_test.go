package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filemaster-org/filemaster/pkg/apply"
)

// resetGlobals restores every package-level configuration var to its
// zero value and points rootConfiguration at root, so each test starts
// from the same state the root command would after flag parsing.
func resetGlobals(t *testing.T, root string) {
	t.Helper()
	runContext = context.Background()
	rootConfiguration = struct {
		help     bool
		root     string
		noUpdate bool
		logLevel string
	}{root: root, logLevel: "warn"}
	setConfiguration = struct {
		help  bool
		apply bool
	}{}
	resetConfiguration = struct {
		help       bool
		all        bool
		missing    bool
		cache      bool
		setCurrent bool
	}{}
	applyConfiguration = struct {
		help   bool
		all    bool
		dryRun bool
	}{}
	lsConfiguration = struct {
		help       bool
		duplicates bool
		all        bool
	}{}
}

// chdirTo switches the process working directory to dir for the duration
// of the test; commands resolve relative path arguments against it just
// as they would a user's shell.
func chdirTo(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Chdir(old)
	})
}

func mustWriteFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func mustInit(t *testing.T, root string) {
	t.Helper()
	resetGlobals(t, root)
	if err := initMain(nil, []string{root}); err != nil {
		t.Fatal("init failed:", err)
	}
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatal(err)
	return false
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

// A single file renamed via set+apply ends up at its new path with its
// content intact, and nothing is left behind at the old one.
func TestScenarioSetThenApplyRenamesFile(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"file1", "file2"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	if err := applyMain(nil, nil); err != nil {
		t.Fatal("apply failed:", err)
	}

	if exists(t, filepath.Join(root, "file1")) {
		t.Error("expected file1 to be gone")
	}
	if got := readFile(t, filepath.Join(root, "file2")); got != "a" {
		t.Errorf("expected file2 to contain \"a\", got %q", got)
	}
}

// set with a trailing-separator intended path relocates each selected file
// relative to the parent directory of the argument it was matched under,
// not relative to the repository root.
func TestScenarioSetWithTrailingSeparatorUsesMatchedRoot(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "dir1/file1", "a")
	mustWriteFile(t, root, "dir2/file2", "b")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"dir1/file1", "dir2/file2", "./"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	if err := applyMain(nil, []string{"dir1"}); err != nil {
		t.Fatal("apply failed:", err)
	}

	if got := readFile(t, filepath.Join(root, "file1")); got != "a" {
		t.Errorf("expected file1 at the repository root with content \"a\", got %q", got)
	}
	if !exists(t, filepath.Join(root, "dir2", "file2")) {
		t.Error("expected dir2/file2 to remain untouched since it wasn't part of the apply selection")
	}
}

// set with a directory argument and no trailing separator on the intended
// path relocates the directory's contents underneath the intended path,
// preserving substructure beneath the matched directory itself.
func TestScenarioSetWithDirectoryArgumentNoTrailingSeparator(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "dir1/file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"dir1", "dir2"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	if err := applyMain(nil, nil); err != nil {
		t.Fatal("apply failed:", err)
	}

	if got := readFile(t, filepath.Join(root, "dir2", "file1")); got != "a" {
		t.Errorf("expected dir2/file1 to contain \"a\", got %q", got)
	}
}

// set with a directory argument and a trailing separator on the intended
// path bumps the matched root up to the directory's parent, so the
// directory's own basename is preserved in the destination.
func TestScenarioSetWithDirectoryArgumentTrailingSeparator(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "dir1/file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"dir1", "dir2/"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	if err := applyMain(nil, nil); err != nil {
		t.Fatal("apply failed:", err)
	}

	if got := readFile(t, filepath.Join(root, "dir2", "dir1", "file1")); got != "a" {
		t.Errorf("expected dir2/dir1/file1 to contain \"a\", got %q", got)
	}
}

// Assigning the same intended path to two files with distinct content is
// rejected at apply time with a user-facing error, and neither file moves.
func TestScenarioApplyRejectsCollidingDestinations(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "file1", "a")
	mustWriteFile(t, root, "file2", "b")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"file1", "file3"}); err != nil {
		t.Fatal("set failed:", err)
	}
	resetGlobals(t, root)
	if err := setMain(nil, []string{"file2", "file3"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	err := applyMain(nil, nil)
	if err == nil {
		t.Fatal("expected apply to fail on colliding destinations")
	}
	var planErr *apply.PlanError
	if !errors.As(err, &planErr) || planErr.Code != apply.ErrDestCollides {
		t.Errorf("expected an E-dest-collides plan error, got %v (%T)", err, err)
	}

	if !exists(t, filepath.Join(root, "file1")) || !exists(t, filepath.Join(root, "file2")) {
		t.Error("expected both source files to remain in place after a rejected plan")
	}
	if exists(t, filepath.Join(root, "file3")) {
		t.Error("expected file3 to not exist; the plan should have been rejected before any move")
	}
}

// Setting an intended path that requires new intermediate directories
// creates them as part of apply.
func TestScenarioApplyCreatesIntermediateDirectories(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"file1", filepath.Join("dir1", "dir2") + string(os.PathSeparator)}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	if err := applyMain(nil, nil); err != nil {
		t.Fatal("apply failed:", err)
	}

	if got := readFile(t, filepath.Join(root, "dir1", "dir2", "file1")); got != "a" {
		t.Errorf("expected dir1/dir2/file1 to contain \"a\", got %q", got)
	}
}

// With -U, apply moves content to the intended path recorded for its prior
// hash even though the file's content (and thus its current hash) has
// since changed, because the cache is never rescanned.
func TestScenarioNoUpdateAppliesRecordedIntent(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"file1", "file2"}); err != nil {
		t.Fatal("set failed:", err)
	}

	mustWriteFile(t, root, "file1", "b")

	resetGlobals(t, root)
	rootConfiguration.noUpdate = true
	if err := applyMain(nil, nil); err != nil {
		t.Fatal("apply failed:", err)
	}

	if got := readFile(t, filepath.Join(root, "file2")); got != "b" {
		t.Errorf("expected file2 to contain the on-disk content \"b\" moved under the stale intent, got %q", got)
	}
}

// ls reports no "=> ..." continuation line once a file sits at its own
// intended path, and picks the assignment back up by content after an
// external rename.
func TestScenarioLsTracksIntentAcrossExternalRename(t *testing.T) {
	root := t.TempDir()
	chdirTo(t, root)
	mustInit(t, root)
	mustWriteFile(t, root, "file1", "a")

	resetGlobals(t, root)
	if err := setMain(nil, []string{"file1", "file1"}); err != nil {
		t.Fatal("set failed:", err)
	}

	resetGlobals(t, root)
	out := captureStdout(t, func() {
		if err := lsMain(nil, nil); err != nil {
			t.Fatal("ls failed:", err)
		}
	})
	if !strings.Contains(out, "file1\n") || strings.Contains(out, "=>") {
		t.Errorf("expected a bare file1 line with no => continuation, got:\n%s", out)
	}

	if err := os.Rename(filepath.Join(root, "file1"), filepath.Join(root, "file1-new")); err != nil {
		t.Fatal(err)
	}

	resetGlobals(t, root)
	out = captureStdout(t, func() {
		if err := lsMain(nil, nil); err != nil {
			t.Fatal("ls failed:", err)
		}
	})
	if !strings.Contains(out, "file1-new\n") || !strings.Contains(out, "=> file1\n") {
		t.Errorf("expected file1-new followed by => file1, got:\n%s", out)
	}
}
