// Package logging provides the leveled, hierarchical logging façade used
// throughout this module. It is grounded on pkg/logging/logger.go from the
// mutagen-io/mutagen codebase: a thin wrapper around the standard log package that
// supports named subloggers and colorized warning/error output via
// github.com/fatih/color. It is generalized here to carry an explicit Level
// (pkg/logging/level.go in Mutagen) so that a single process can silence
// or enable categories of messages independently — the core emits routine
// per-file informational and large-file messages that a quiet CLI invocation
// should be able to suppress without also losing warnings and errors.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	callback func(string)
	buffer   []byte
}

func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. A nil *Logger is valid and discards all
// output, so that components may be handed a logger unconditionally without
// a separate "is logging enabled" check. It is designed to be created once
// per process and shared via Sublogger rather than accessed as a global, per
// the design note that progress and logging dependencies should be
// first-class arguments.
type Logger struct {
	level  Level
	prefix string
	std    *log.Logger
}

// NewLogger creates a new root logger at the given level, writing to output.
func NewLogger(level Level, output io.Writer) *Logger {
	return &Logger{
		level: level,
		std:   log.New(output, "", log.LstdFlags),
	}
}

// Sublogger creates a new sublogger with the specified name appended to any
// existing prefix.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{level: l.level, prefix: prefix, std: l.std}
}

func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.std.Output(3, line)
}

// Print logs an informational message with fmt.Sprint semantics.
func (l *Logger) Print(v ...any) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprint(v...))
	}
}

// Printf logs an informational message with fmt.Sprintf semantics.
func (l *Logger) Printf(format string, v ...any) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Println logs an informational message with fmt.Sprintln semantics.
func (l *Logger) Println(v ...any) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintln(v...))
	}
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if !l.enabled(LevelInfo) {
		return io.Discard
	}
	return &writer{callback: l.Println}
}

// Debug logs a debugging message with fmt.Sprint semantics.
func (l *Logger) Debug(v ...any) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprint(v...))
	}
}

// Debugf logs a debugging message with fmt.Sprintf semantics.
func (l *Logger) Debugf(format string, v ...any) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Warn logs a warning with fmt.Sprint semantics, colorized yellow unless
// fatih/color has color disabled (by default, when standard output is not a
// terminal; the logger's own writer is not consulted).
func (l *Logger) Warn(v ...any) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("warning: %s", fmt.Sprint(v...)))
	}
}

// Warnf logs a warning with fmt.Sprintf semantics, colorized yellow under the
// same condition as Warn.
func (l *Logger) Warnf(format string, v ...any) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("warning: "+format, v...))
	}
}

// Error logs an error, colorized red under the same condition as Warn.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(color.RedString("error: %v", err))
	}
}

// Errorf logs an error with fmt.Sprintf semantics, colorized red under the
// same condition as Warn.
func (l *Logger) Errorf(format string, v ...any) {
	if l.enabled(LevelError) {
		l.output(color.RedString("error: "+format, v...))
	}
}
