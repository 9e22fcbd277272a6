package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/filemaster-org/filemaster/pkg/apply"
	"github.com/filemaster-org/filemaster/pkg/usererror"
)

// Interrupted is returned by command implementations when they abort
// because a termination signal arrived. Its own message is never shown;
// Fatal recognizes it and prints a fixed notice instead of an "error:" line.
var Interrupted = errors.New("operation interrupted")

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal prints an error message to standard error and terminates the
// process with an exit code chosen by the error's class: 1 if err is (or
// wraps) Interrupted, 2 if it is (or wraps) a usererror.Error or an
// apply.PlanError, and 1 otherwise for everything uncategorized (I/O
// failures, corrupt stores, bugs).
func Fatal(err error) {
	if errors.Is(err, Interrupted) {
		fmt.Fprintln(os.Stderr, "Operation interrupted.")
		os.Exit(1)
	}

	var userErr *usererror.Error
	var planErr *apply.PlanError
	if errors.As(err, &userErr) || errors.As(err, &planErr) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	Error(err)
	os.Exit(1)
}
