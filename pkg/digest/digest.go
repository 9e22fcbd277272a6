// Package digest implements the self-describing content-digest format used
// throughout this module: a string of the form "<algorithm>:<hex>".
//
// Grounded on pkg/synchronization/digest.go from the mutagen-io/mutagen codebase,
// which represents a digest algorithm as an enum with a Factory() method
// returning a hash.Hash constructor. This module fixes the algorithm
// at SHA-256, so the enum collapses to a single constant, but the
// "self-describing string, factory function for streaming computation"
// shape is kept so that a future algorithm could be added without changing
// every caller.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/pkg/errors"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm string

// AlgorithmSHA256 is the only algorithm currently supported.
const AlgorithmSHA256 Algorithm = "sha256"

// Factory returns a constructor for this algorithm's hash function.
func (a Algorithm) Factory() func() hash.Hash {
	switch a {
	case AlgorithmSHA256:
		return sha256.New
	default:
		panic("unsupported digest algorithm")
	}
}

// Digest is a self-describing content digest, formatted as
// "<algorithm>:<hex>".
type Digest string

// New constructs a Digest from an algorithm and raw hash bytes.
func New(algorithm Algorithm, sum []byte) Digest {
	return Digest(string(algorithm) + ":" + hex.EncodeToString(sum))
}

// Parse validates that s is a well-formed digest string.
func Parse(s string) (Digest, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return "", errors.Errorf("malformed digest: %q", s)
	}
	if Algorithm(parts[0]) != AlgorithmSHA256 {
		return "", errors.Errorf("unsupported digest algorithm: %q", parts[0])
	}
	if _, err := hex.DecodeString(parts[1]); err != nil {
		return "", errors.Wrapf(err, "malformed digest hex in %q", s)
	}
	return Digest(s), nil
}

// OfBytes computes the SHA-256 digest of data.
func OfBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return New(AlgorithmSHA256, sum[:])
}

// Hasher returns a fresh hash.Hash for the SHA-256 algorithm, suitable for
// streaming content through via io.Copy before calling FromHash.
func Hasher() hash.Hash {
	return AlgorithmSHA256.Factory()()
}

// FromHash finalizes a hash.Hash produced by Hasher into a Digest.
func FromHash(h hash.Hash) Digest {
	return New(AlgorithmSHA256, h.Sum(nil))
}
