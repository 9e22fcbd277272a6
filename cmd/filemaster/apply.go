package main

import (
	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/repository"
)

func applyMain(command *cobra.Command, arguments []string) error {
	opts, _, err := sessionOptions(false)
	if err != nil {
		return err
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
		return runApply(repo, set.Files, applyConfiguration.dryRun)
	})
}

var applyCommand = &cobra.Command{
	Use:   "apply [<path>...]",
	Short: "Move matched files to their assigned intended paths",
	Run:   cmd.Mainify(applyMain),
}

var applyConfiguration struct {
	help   bool
	all    bool
	dryRun bool
}

func init() {
	flags := applyCommand.Flags()
	flags.BoolVarP(&applyConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&applyConfiguration.all, "all", "a", false, "Apply to every matched file in the repository (default when no paths given)")
	flags.BoolVarP(&applyConfiguration.dryRun, "dry-run", "n", false, "Validate and log the plan without moving anything")
}
