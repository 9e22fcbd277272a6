package cmd

import (
	"context"
	"os"
	"os/signal"
)

// WatchForInterrupt returns a context that is canceled the moment one of
// TerminationSignals arrives, and a cancel function that stops watching and
// releases the signal channel. Long-running core operations are not
// interrupted mid-flight; callers check ctx.Err() between units of work
// (e.g. after each file) and translate a canceled context into Interrupted.
func WatchForInterrupt() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, TerminationSignals...)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}
