// Package identity holds the small set of constants that identify this
// build of the tool and the on-disk layout it expects.
//
// Grounded on pkg/mutagen/version.go and pkg/filesystem/mutagen.go from the
// mutagen-io/mutagen codebase: a version triple assembled into a dotted
// string, and a named constant for the data directory. Mutagen's data
// directory lives in the user's home and holds daemon/session state; this
// module's marker directory instead lives at the root of the tracked tree
// and holds the store's cache and index files.
package identity

import "fmt"

const (
	// VersionMajor is the current major version.
	VersionMajor = 0
	// VersionMinor is the current minor version.
	VersionMinor = 1
	// VersionPatch is the current patch version.
	VersionPatch = 0

	// ApplicationName is the name used in CLI help text and the root cobra
	// command.
	ApplicationName = "filemaster"

	// DefaultMarkerName is the name of the marker subdirectory that
	// identifies a repository root, and which holds its store files.
	DefaultMarkerName = ".filemaster"
)

// Version is the dotted-triple version string for this build.
var Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
