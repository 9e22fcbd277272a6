package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/repository"
)

func lsMain(command *cobra.Command, arguments []string) error {
	opts, _, err := sessionOptions(false)
	if err != nil {
		return err
	}
	if lsConfiguration.all {
		opts.Filter = func(string, bool) bool { return true }
	}

	return repository.With(opts, func(repo *repository.Repository) error {
		paths := arguments
		if len(paths) == 0 {
			paths = []string{repo.Root}
		}

		set, err := repository.BuildFileSet(repo.Root, paths, repo.AggregatedFiles, repo.Filter)
		if err != nil {
			return err
		}

		for _, f := range set.Files {
			fmt.Println(relativeTo(repo.Root, f.Path))
			printIntendedLine(repo.Root, f)
			if lsConfiguration.duplicates {
				printDuplicateLines(repo.Root, f)
			}
		}
		fmt.Printf("%d file(s) matched.\n", len(set.Files))
		return nil
	})
}

// printIntendedLine prints the "=> intended/path" continuation line, unless
// the file is already at its intended path or has no intended path set.
func printIntendedLine(root string, f repository.MatchedFile) {
	intended := f.AggregatedFile.IndexEntry.IntendedPath
	if intended == nil || *intended == relativeTo(root, f.Path) {
		return
	}
	fmt.Printf("  => %s\n", *intended)
}

// printDuplicateLines prints every other seen path sharing this file's
// content hash, for -s.
func printDuplicateLines(root string, f repository.MatchedFile) {
	for _, seen := range f.AggregatedFile.IndexEntry.SeenPaths {
		if seen == f.Path {
			continue
		}
		fmt.Printf("  dup: %s\n", relativeTo(root, seen))
	}
}

var lsCommand = &cobra.Command{
	Use:   "ls [<path>...]",
	Short: "List matched files with their current and intended paths",
	Run:   cmd.Mainify(lsMain),
}

var lsConfiguration struct {
	help       bool
	duplicates bool
	all        bool
}

func init() {
	flags := lsCommand.Flags()
	flags.BoolVarP(&lsConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&lsConfiguration.duplicates, "show-duplicates", "s", false, "Show every path sharing each file's content")
	flags.BoolVarP(&lsConfiguration.all, "all", "a", false, "Include files normally excluded by the default filter")
}
