package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/repository"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

func setMain(command *cobra.Command, arguments []string) error {
	if len(arguments) < 2 {
		return usererror.New("set requires at least one path and an intended path")
	}
	pathArgs := arguments[:len(arguments)-1]
	rawIntended := arguments[len(arguments)-1]
	trailingSeparator := strings.HasSuffix(rawIntended, "/") ||
		(os.PathSeparator != '/' && strings.HasSuffix(rawIntended, string(os.PathSeparator)))

	opts, _, err := sessionOptions(false)
	if err != nil {
		return err
	}

	return repository.With(opts, func(repo *repository.Repository) error {
		resolvedArgs := make([]string, len(pathArgs))
		for i, p := range pathArgs {
			resolved, err := resolveArg(p)
			if err != nil {
				return err
			}
			resolvedArgs[i] = resolved
		}

		set, err := repository.BuildFileSet(repo.Root, pathArgs, repo.AggregatedFiles, repo.Filter)
		if err != nil {
			return err
		}

		baseAbs, err := filepath.Abs(rawIntended)
		if err != nil {
			return err
		}

		for i := range set.Files {
			f := &set.Files[i]

			root := matchedRootFor(f.Path, resolvedArgs, trailingSeparator)
			rel, err := filepath.Rel(root, f.Path)
			if err != nil {
				return err
			}
			destAbs := filepath.Join(baseAbs, rel)

			intended, err := rootRelativeDestination(repo.Root, destAbs)
			if err != nil {
				return err
			}
			f.AggregatedFile.IndexEntry.IntendedPath = &intended
			setIntendedPath(repo, f.AggregatedFile.IndexEntry.Hash, &intended)
		}

		if setConfiguration.apply {
			return runApply(repo, set.Files, false)
		}
		return nil
	})
}

var setCommand = &cobra.Command{
	Use:   "set <path>... <intended>",
	Short: "Assign an intended path to one or more matched files",
	Run:   cmd.Mainify(setMain),
}

var setConfiguration struct {
	help  bool
	apply bool
}

func init() {
	flags := setCommand.Flags()
	flags.BoolVarP(&setConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVar(&setConfiguration.apply, "apply", false, "Immediately apply the move after assigning the intended path")
}
