package filesystem

import (
	"os"
	"sort"

	"github.com/pkg/errors"
)

// SortedDirectoryContents returns the contents of the directory at path,
// sorted by basename. Grounded on DirectoryContentsByPath from Mutagen
// repository's pkg/filesystem/directory.go, which deliberately leaves
// ordering non-deterministic "for speed" — reversed here because walk and
// listing order need to be reproducible across runs.
func SortedDirectoryContents(path string) ([]os.DirEntry, error) {
	directory, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open directory")
	}
	defer directory.Close()

	contents, err := directory.ReadDir(0)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read directory contents")
	}

	sort.Slice(contents, func(i, j int) bool {
		return contents[i].Name() < contents[j].Name()
	})

	return contents, nil
}
