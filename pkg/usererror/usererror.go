// Package usererror distinguishes errors caused by how the tool was used
// (a bad path, a conflicting move, an invalid flag combination) from
// everything else (I/O failure, a corrupt store, a bug). The CLI driver
// uses this distinction to choose an exit code and a message prefix,
// so that the CLI exits 2 instead of 1 and prints without a Go error chain.
//
// Grounded on Mutagen's cmd/error.go Warning/Error/Fatal helpers,
// which already separate "print and continue" from "print and exit"; this
// package adds the missing piece, a typed error that the driver can
// recognize with errors.As before deciding how to report it.
package usererror

import "fmt"

// Error is a message meant to be shown to the user as-is, without a Go
// error chain or stack context.
type Error struct {
	message string
}

// New creates a user error with a fixed message.
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a user error with a formatted message.
func Newf(format string, args ...any) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.message
}
