// Package encoding provides the generic load/save primitives used to
// implement this module's Atomic Store: a single persisted value, written to
// disk by encode-then-atomic-rename and read back by read-then-decode.
//
// Grounded on pkg/encoding/common.go from the mutagen-io/mutagen codebase
// (LoadAndUnmarshal / MarshalAndSave closures over filesystem.WriteFileAtomic).
package encoding

import (
	"fmt"
	"os"

	"github.com/filemaster-org/filemaster/pkg/filesystem"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

// LoadAndUnmarshal reads the file at path and invokes unmarshal on its
// contents. A missing file is returned as-is (callers distinguish it with
// os.IsNotExist) rather than wrapped, per the Atomic Store's requirement
// that "missing" be distinguishable from "malformed".
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("unable to load file: %w", err)
	}
	if err := unmarshal(data); err != nil {
		return fmt.Errorf("unable to unmarshal data: %w", err)
	}
	return nil
}

// MarshalAndSave invokes marshal and writes the result to path atomically,
// with owner-only permissions.
func MarshalAndSave(path string, logger *logging.Logger, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return fmt.Errorf("unable to marshal message: %w", err)
	}
	if err := filesystem.WriteFileAtomic(path, data, 0600, logger); err != nil {
		return fmt.Errorf("unable to write message data: %w", err)
	}
	return nil
}
