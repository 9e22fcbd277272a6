package cache

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/filemaster-org/filemaster/pkg/digest"
	"github.com/filemaster-org/filemaster/pkg/logging"
)

// WriteLog is an append-only journal of CachedFile records, used to survive
// an interrupted Update without losing hashes already computed. Each record
// is one line, "<digest> <json-bytes>\n", where digest is the SHA-256
// content digest of the JSON payload in this module's self-describing
// "sha256:<hex>" form.
//
// There is no file in Mutagen implementing a journal of this shape; the
// framing and truncate-on-corruption recovery are authored directly for
// this store, reusing this module's own digest format and Mutagen's
// github.com/pkg/errors wrapping convention for error messages.
type WriteLog struct {
	path    string
	file    *os.File
	records []CachedFile
	logger  *logging.Logger
}

// OpenWriteLog opens (creating if absent) the write log at path, validating
// every record currently present and truncating the file at the first
// malformed or digest-mismatched record.
func OpenWriteLog(path string, logger *logging.Logger) (*WriteLog, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open write log")
	}

	log := &WriteLog{path: path, file: file, logger: logger}

	records, validLength, err := readRecords(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	log.records = records

	if size := getSize(file); validLength != size {
		if err := file.Truncate(validLength); err != nil {
			file.Close()
			return nil, errors.Wrap(err, "unable to truncate corrupt write log")
		}
		logger.Warnf("truncated write log at offset %d after detecting a malformed record", validLength)
	}
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		file.Close()
		return nil, errors.Wrap(err, "unable to seek write log to end")
	}

	return log, nil
}

// readRecords scans every record in f from the beginning, returning the
// well-formed, digest-verified records read, and the byte offset
// immediately following the last such record. A malformed or
// digest-mismatched line (including a torn line at the end of the file)
// stops the scan without error; the returned offset falls short of the
// file's length in that case, signaling the caller to truncate.
func readRecords(f *os.File) ([]CachedFile, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, 0, errors.Wrap(err, "unable to seek write log")
	}
	reader := bufio.NewReader(f)

	var records []CachedFile
	var offset int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Either EOF with no trailing newline (a torn final record) or
			// a real read error; either way, stop before this line.
			break
		}

		record, ok := parseRecord(line)
		if !ok {
			break
		}

		records = append(records, record)
		offset += int64(len(line))
	}

	return records, offset, nil
}

// parseRecord parses and digest-verifies a single "<digest> <json>\n" line.
func parseRecord(line string) (CachedFile, bool) {
	trimmed := strings.TrimSuffix(line, "\n")
	fields := strings.SplitN(trimmed, " ", 2)
	if len(fields) != 2 {
		return CachedFile{}, false
	}

	wantDigest, err := digest.Parse(fields[0])
	if err != nil {
		return CachedFile{}, false
	}
	payload := []byte(fields[1])
	if digest.OfBytes(payload) != wantDigest {
		return CachedFile{}, false
	}

	var record CachedFile
	if err := json.Unmarshal(payload, &record); err != nil {
		return CachedFile{}, false
	}
	return record, true
}

// Records returns every well-formed record currently in the log, in append
// order.
func (w *WriteLog) Records() ([]CachedFile, error) {
	return w.records, nil
}

// Append writes a new record to the end of the log and to the in-memory
// record list.
func (w *WriteLog) Append(record CachedFile) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "unable to marshal write log record")
	}
	line := string(digest.OfBytes(payload)) + " " + string(payload) + "\n"

	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrap(err, "unable to seek write log")
	}
	if _, err := w.file.Write([]byte(line)); err != nil {
		return errors.Wrap(err, "unable to write write log record")
	}
	if err := w.file.Sync(); err != nil {
		return errors.Wrap(err, "unable to sync write log")
	}

	w.records = append(w.records, record)
	return nil
}

// Flush empties the in-memory record list and truncates the log file to
// zero length.
func (w *WriteLog) Flush() error {
	if err := w.file.Truncate(0); err != nil {
		return errors.Wrap(err, "unable to truncate write log")
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "unable to seek write log")
	}
	w.records = nil
	return nil
}

// Close closes the underlying file without flushing it.
func (w *WriteLog) Close() error {
	return w.file.Close()
}

func getSize(file *os.File) int64 {
	info, err := file.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}
