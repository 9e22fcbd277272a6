// Command filemaster organizes a directory tree by content: it hashes
// every file under a repository root, lets the user assign each distinct
// content an intended path, and moves files into agreement with that
// assignment on request.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/filemaster-org/filemaster/cmd"
)

// runContext is canceled when a termination signal arrives; command
// implementations check it between files rather than mid-operation.
var runContext context.Context

func rootMain(command *cobra.Command, arguments []string) error {
	return updateAndSummarize()
}

var rootCommand = &cobra.Command{
	Use:   "filemaster",
	Short: "filemaster organizes a directory tree by content rather than by path",
	Args:  cmd.DisallowArguments,
	Run:   cmd.Mainify(rootMain),
}

var rootConfiguration struct {
	// help indicates whether or not help information should be shown for
	// the command.
	help bool
	// root overrides the repository root; if empty, it is located by an
	// upward search from the current working directory.
	root string
	// noUpdate skips the cache update at the start of the session.
	noUpdate bool
	// logLevel selects the logging verbosity.
	logLevel string
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVar(&rootConfiguration.root, "root", "", "Specify the repository root explicitly")
	flags.BoolVarP(&rootConfiguration.noUpdate, "no-update", "U", false, "Skip the cache update for this session")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "warn", "Specify the logging level (disabled|error|warn|info|debug)")

	cobra.EnableCommandSorting = false
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		initCommand,
		lsCommand,
		setCommand,
		resetCommand,
		applyCommand,
	)
}

func main() {
	ctx, cancel := cmd.WatchForInterrupt()
	defer cancel()
	runContext = ctx

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
