package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
	"github.com/filemaster-org/filemaster/pkg/repository"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

func initMain(command *cobra.Command, arguments []string) error {
	if len(arguments) > 1 {
		return usererror.New("init accepts at most one path argument")
	}
	path := "."
	if len(arguments) == 1 {
		path = arguments[0]
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	if err := repository.Init(path, repository.DefaultMarkerName, logger); err != nil {
		return err
	}

	fmt.Printf("Initialized repository in %s\n", path)
	return nil
}

var initCommand = &cobra.Command{
	Use:   "init [<path>]",
	Short: "Create a repository marker directory and empty store files",
	Run:   cmd.Mainify(initMain),
}

var initConfiguration struct {
	help bool
}

func init() {
	flags := initCommand.Flags()
	flags.BoolVarP(&initConfiguration.help, "help", "h", false, "Show help information")
}
