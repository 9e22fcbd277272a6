package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	// statusLineFormat truncates and right-pads messages so that printed
	// content is exactly 80 characters: this overwrites all content from
	// the previous line, keeps the cursor from flashing between positions,
	// and avoids overflowing an 80-column terminal.
	statusLineFormat = "\r%-80.80s"
)

// StatusLinePrinter provides printing facilities for dynamically updating
// status lines in the console. It supports colorized printing and
// degrades to plain, newline-terminated printing when its output isn't a
// terminal (redirected to a file, piped, or during shell completion),
// since carriage-return animation there just produces noise.
type StatusLinePrinter struct {
	// UseStandardError causes the printer to use standard error for its
	// output instead of standard output (the default).
	UseStandardError bool
	// nonEmpty indicates whether the printer has printed any non-empty
	// content to the status line.
	nonEmpty bool
}

func (p *StatusLinePrinter) file() *os.File {
	if p.UseStandardError {
		return os.Stderr
	}
	return os.Stdout
}

// animated reports whether this printer's output stream is a terminal that
// can sensibly display carriage-return-driven status updates.
func (p *StatusLinePrinter) animated() bool {
	return !PerformingShellCompletion && isatty.IsTerminal(p.file().Fd())
}

// Print prints a message to the status line, overwriting any existing
// content if the output is a terminal, or printing a new line otherwise.
func (p *StatusLinePrinter) Print(message string) {
	output := color.Output
	if p.UseStandardError {
		output = color.Error
	}

	if !p.animated() {
		if message != "" {
			fmt.Fprintln(output, message)
		}
		return
	}

	fmt.Fprintf(output, statusLineFormat, message)
	p.nonEmpty = true
}

// Clear clears any content on the status line and moves the cursor back to
// the beginning of the line. It is a no-op when not animated.
func (p *StatusLinePrinter) Clear() {
	if !p.animated() {
		return
	}
	p.Print("")
	fmt.Fprint(p.file(), "\r")
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline character if the current line is
// non-empty.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	if p.nonEmpty {
		fmt.Fprintln(p.file())
		p.nonEmpty = false
	}
}
