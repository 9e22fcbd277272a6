package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/repository"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

func resetMain(command *cobra.Command, arguments []string) error {
	selectors := 0
	if resetConfiguration.all {
		selectors++
	}
	if resetConfiguration.missing {
		selectors++
	}
	if resetConfiguration.cache {
		selectors++
	}
	if len(arguments) > 0 {
		selectors++
	}
	if selectors == 0 {
		return usererror.New("reset requires -a, --missing, --cache, or one or more paths")
	}
	if selectors > 1 {
		return usererror.New("-a, --missing, --cache, and explicit paths are mutually exclusive")
	}
	if resetConfiguration.setCurrent && (resetConfiguration.missing || resetConfiguration.cache) {
		return usererror.New("-s cannot be combined with --missing or --cache")
	}

	opts, _, err := sessionOptions(resetConfiguration.cache)
	if err != nil {
		return err
	}

	return repository.With(opts, func(repo *repository.Repository) error {
		if resetConfiguration.missing {
			return resetMissing(repo)
		}
		if resetConfiguration.cache {
			fmt.Println("Cache recreated.")
			return nil
		}

		paths := arguments
		if resetConfiguration.all {
			paths = []string{repo.Root}
		}
		set, err := repository.BuildFileSet(repo.Root, paths, repo.AggregatedFiles, repo.Filter)
		if err != nil {
			return err
		}
		for _, f := range set.Files {
			var intended *string
			if resetConfiguration.setCurrent {
				rel := relativeTo(repo.Root, f.Path)
				intended = &rel
			}
			setIntendedPath(repo, f.AggregatedFile.IndexEntry.Hash, intended)
		}
		fmt.Printf("Reset %d file(s).\n", len(set.Files))
		return nil
	})
}

// resetMissing drops every index entry with no corresponding cached file,
// i.e. content that was once tracked but no longer exists anywhere in the
// tree.
func resetMissing(repo *repository.Repository) error {
	kept := repo.AggregatedFiles[:0]
	dropped := 0
	for _, af := range repo.AggregatedFiles {
		if len(af.CachedFiles) == 0 {
			dropped++
			continue
		}
		kept = append(kept, af)
	}
	repo.AggregatedFiles = kept
	fmt.Printf("Dropped %d missing index entries.\n", dropped)
	return nil
}

var resetCommand = &cobra.Command{
	Use:   "reset [<path>...]",
	Short: "Clear (or set to current) the intended path of a selection",
	Run:   cmd.Mainify(resetMain),
}

var resetConfiguration struct {
	help       bool
	all        bool
	missing    bool
	cache      bool
	setCurrent bool
}

func init() {
	flags := resetCommand.Flags()
	flags.BoolVarP(&resetConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&resetConfiguration.all, "all", "a", false, "Reset every matched file in the repository")
	flags.BoolVar(&resetConfiguration.missing, "missing", false, "Drop index entries with no corresponding cached file")
	flags.BoolVar(&resetConfiguration.cache, "cache", false, "Recreate the cache from scratch")
	flags.BoolVarP(&resetConfiguration.setCurrent, "set-current", "s", false, "Set the intended path to each file's current path instead of clearing it")
}
