package encoding

import (
	"encoding/json"

	"github.com/filemaster-org/filemaster/pkg/logging"
)

// Codec converts a value of type T to and from its on-disk representation.
// This recovers, from Go's type system, the composition Mutagen achieves
// with ad hoc encode/decode closures per field (nullable, list, record with
// named fields): a Codec is implemented once per entity shape and reused by
// value, rather than assembled at each call site.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// AtomicStore persists a single value of type T at a fixed path using Codec
// to translate between T and bytes, and LoadAndUnmarshal/MarshalAndSave
// (backed by filesystem.WriteFileAtomic) to translate between bytes and
// disk. It is the generic realization of the Atomic Store component: the
// store itself knows nothing about the shape of T.
type AtomicStore[T any] struct {
	path   string
	codec  Codec[T]
	logger *logging.Logger
}

// NewAtomicStore creates a store for values of type T at path, using codec
// and logging through logger.
func NewAtomicStore[T any](path string, codec Codec[T], logger *logging.Logger) *AtomicStore[T] {
	return &AtomicStore[T]{path: path, codec: codec, logger: logger}
}

// Path returns the filesystem path this store persists to.
func (s *AtomicStore[T]) Path() string {
	return s.path
}

// Load reads and decodes the stored value. A missing file is reported via
// os.IsNotExist on the returned error; a malformed file is a distinct,
// wrapped error.
func (s *AtomicStore[T]) Load() (T, error) {
	var result T
	err := LoadAndUnmarshal(s.path, func(data []byte) error {
		decoded, decodeErr := s.codec.Decode(data)
		if decodeErr != nil {
			return decodeErr
		}
		result = decoded
		return nil
	})
	return result, err
}

// Save encodes and atomically persists value.
func (s *AtomicStore[T]) Save(value T) error {
	return MarshalAndSave(s.path, s.logger, func() ([]byte, error) {
		return s.codec.Encode(value)
	})
}

// JSONDocumentCodec implements Codec by marshaling the entire value as a
// single JSON document. This is used by the FileIndex, which persists one
// array value.
type JSONDocumentCodec[T any] struct{}

// Encode implements Codec.Encode.
func (JSONDocumentCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

// Decode implements Codec.Decode.
func (JSONDocumentCodec[T]) Decode(data []byte) (T, error) {
	var result T
	err := json.Unmarshal(data, &result)
	return result, err
}

// JSONLinesCodec implements Codec[[]T] by marshaling each element of the
// slice as its own JSON object, one per line. This is used by the FileCache,
// which persists a list that should remain diffable and line-recoverable.
type JSONLinesCodec[T any] struct{}

// Encode implements Codec.Encode.
func (JSONLinesCodec[T]) Encode(values []T) ([]byte, error) {
	var buffer []byte
	for _, value := range values {
		line, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buffer = append(buffer, line...)
		buffer = append(buffer, '\n')
	}
	return buffer, nil
}

// Decode implements Codec.Decode.
func (JSONLinesCodec[T]) Decode(data []byte) ([]T, error) {
	var results []T
	for _, line := range splitLines(data) {
		if len(line) == 0 {
			continue
		}
		var value T
		if err := json.Unmarshal(line, &value); err != nil {
			return nil, err
		}
		results = append(results, value)
	}
	return results, nil
}

// splitLines splits data on newline characters without retaining them,
// tolerating a missing trailing newline.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
