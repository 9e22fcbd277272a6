package main

import (
	"fmt"

	"github.com/filemaster-org/filemaster/pkg/repository"
)

// updateAndSummarize is the no-subcommand default action: update the cache
// (unless -U was given) and print a summary of every matched file in the
// repository.
func updateAndSummarize() error {
	opts, _, err := sessionOptions(false)
	if err != nil {
		return err
	}

	return repository.With(opts, func(repo *repository.Repository) error {
		set, err := repository.BuildFileSet(repo.Root, []string{repo.Root}, repo.AggregatedFiles, repo.Filter)
		if err != nil {
			return err
		}

		var pending int
		for _, f := range set.Files {
			intended := f.AggregatedFile.IndexEntry.IntendedPath
			if intended != nil && *intended != relativeTo(repo.Root, f.Path) {
				pending++
			}
		}

		fmt.Printf("%d file(s) tracked, %d pending move(s).\n", len(set.Files), pending)
		return nil
	})
}
