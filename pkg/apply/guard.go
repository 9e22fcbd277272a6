package apply

import (
	"github.com/filemaster-org/filemaster/pkg/repository"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// CheckDuplicateSelection implements the two-identical-files guard: if
// files contains two different MatchedFiles sharing a content hash (and so
// sharing one IndexEntry.IntendedPath), it is an error, because both would
// be moved to the same destination. The two ways this can happen produce
// distinct messages: the same path appearing twice (selected through
// overlapping command-line arguments) versus two distinct paths that
// happen to share content.
func CheckDuplicateSelection(files []repository.MatchedFile) error {
	firstPathByHash := make(map[string]string, len(files))

	for _, f := range files {
		hash := string(f.AggregatedFile.IndexEntry.Hash)
		prior, seen := firstPathByHash[hash]
		if !seen {
			firstPathByHash[hash] = f.Path
			continue
		}
		if prior == f.Path {
			return usererror.Newf("the same file was selected twice through overlapping arguments: %s", f.Path)
		}
		return usererror.Newf("cannot apply an intended path to identical files simultaneously: %s and %s", prior, f.Path)
	}

	return nil
}
