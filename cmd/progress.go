package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/filemaster-org/filemaster/pkg/cache"
)

// printRateLimit bounds how often a CacheProgressSink redraws the status
// line, so that hashing many small files doesn't flood the terminal with
// carriage returns. printGrace delays the first redraw, so that a scan
// that finishes quickly never prints a status line at all.
const (
	printRateLimit = 200 * time.Millisecond
	printGrace     = time.Second
)

// CacheProgressSink adapts a StatusLinePrinter into a cache.ProgressSink,
// rendering a running count of files checked and bytes hashed. It also
// checks ctx between files, so that an interrupt during a long cache update
// stops the scan cleanly at the next file boundary rather than mid-hash.
type CacheProgressSink struct {
	ctx       context.Context
	printer   *StatusLinePrinter
	checked   int
	bytesRead uint64
	started   time.Time
	lastPrint time.Time
}

// NewCacheProgressSink creates a CacheProgressSink that renders through
// printer and aborts the scan once ctx is done.
func NewCacheProgressSink(ctx context.Context, printer *StatusLinePrinter) *CacheProgressSink {
	return &CacheProgressSink{ctx: ctx, printer: printer, started: time.Now()}
}

// FileChecked implements cache.ProgressSink.FileChecked.
func (s *CacheProgressSink) FileChecked() error {
	if err := s.ctx.Err(); err != nil {
		return Interrupted
	}
	s.checked++
	s.maybePrint(false)
	return nil
}

// BytesRead implements cache.ProgressSink.BytesRead.
func (s *CacheProgressSink) BytesRead(delta int64) error {
	s.bytesRead += uint64(delta)
	s.maybePrint(false)
	return nil
}

// Done renders the final status and clears the status line.
func (s *CacheProgressSink) Done() {
	s.maybePrint(true)
	s.printer.Clear()
}

func (s *CacheProgressSink) maybePrint(force bool) {
	now := time.Now()
	if !force {
		if now.Sub(s.started) < printGrace {
			return
		}
		if now.Sub(s.lastPrint) < printRateLimit {
			return
		}
	}
	s.lastPrint = now
	s.printer.Print(fmt.Sprintf("Checked %d files (%s hashed)", s.checked, humanize.Bytes(s.bytesRead)))
}

var _ cache.ProgressSink = (*CacheProgressSink)(nil)
