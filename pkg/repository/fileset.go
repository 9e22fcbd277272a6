package repository

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/cache"
	"github.com/filemaster-org/filemaster/pkg/filesystem"
	"github.com/filemaster-org/filemaster/pkg/index"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// MatchedFile is a single file selected by a FileSet, paired with the
// aggregated index/cache information for its content.
type MatchedFile struct {
	Path           string
	AggregatedFile index.AggregatedFile
}

// FileSet is an ordered, validated selection of files within a repository.
// Files are sorted by current path for deterministic output; duplicate
// selections (the same file matched by two overlapping arguments) are
// preserved rather than deduplicated, so that callers can apply the
// two-identical-files guard and report it precisely.
type FileSet struct {
	Files []MatchedFile
}

// FilterFunc mirrors cache.FilterFunc so that repository callers don't need
// to import the cache package just to supply a filter.
type FilterFunc = cache.FilterFunc

// BuildFileSet validates and expands the user-supplied paths into a
// FileSet. Each path must exist, must be a regular file or a directory,
// is resolved through any symlinks at this boundary, and must be a
// descendant of root. Directories are expanded recursively, applying
// filter to prune subtrees and exclude files. A file named explicitly is not
// checked against filter, but it must be present in aggregated (that is,
// tracked by the cache); otherwise it is a user error.
func BuildFileSet(root string, paths []string, aggregated []index.AggregatedFile, filter FilterFunc) (FileSet, error) {
	byPath := make(map[string]index.AggregatedFile)
	for _, af := range aggregated {
		for _, cf := range af.CachedFiles {
			byPath[cf.Path] = af
		}
	}

	var matched []MatchedFile
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return FileSet{}, errors.Wrapf(err, "unable to resolve %s", p)
		}
		if _, err := os.Lstat(abs); err != nil {
			if os.IsNotExist(err) {
				return FileSet{}, usererror.Newf("path does not exist: %s", p)
			}
			return FileSet{}, errors.Wrapf(err, "unable to stat %s", p)
		}

		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return FileSet{}, errors.Wrapf(err, "unable to resolve symlinks in %s", p)
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return FileSet{}, errors.Wrapf(err, "unable to stat %s", p)
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return FileSet{}, usererror.Newf("path is neither a regular file nor a directory: %s", p)
		}
		if !isDescendant(root, resolved) {
			return FileSet{}, usererror.Newf("path is not inside the repository: %s", p)
		}

		if info.IsDir() {
			files, err := expandDirectory(resolved, filter, byPath)
			if err != nil {
				return FileSet{}, err
			}
			matched = append(matched, files...)
			continue
		}

		af, ok := byPath[resolved]
		if !ok {
			return FileSet{}, usererror.Newf("file is not tracked by the cache, update the repository first: %s", p)
		}
		matched = append(matched, MatchedFile{Path: resolved, AggregatedFile: af})
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Path < matched[j].Path })
	return FileSet{Files: matched}, nil
}

// expandDirectory walks root applying filter, returning a MatchedFile for
// every eligible regular file found that is present in byPath.
func expandDirectory(root string, filter FilterFunc, byPath map[string]index.AggregatedFile) ([]MatchedFile, error) {
	var files []MatchedFile
	err := filesystem.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		isDir := info.IsDir()
		if !filter(path, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isDir || !info.Mode().IsRegular() {
			return nil
		}
		if af, ok := byPath[path]; ok {
			files = append(files, MatchedFile{Path: path, AggregatedFile: af})
		}
		return nil
	})
	return files, err
}

// isDescendant reports whether path is root or a descendant of root.
func isDescendant(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
