package util

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// ShutdownSignals are the signals that stop a run
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SetupSignalHandler returns a context cancelled with ErrCancelled by the
// first SIGINT or SIGTERM. Strategies wait for in-flight work after
// cancellation, so with forceExit a second signal exits the process with
// status 130. Worker processes pass false: a terminal Ctrl-C reaches them
// from the process group and again from the coordinator, and they must
// still write their response.
func SetupSignalHandler(forceExit bool) context.Context {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, ShutdownSignals...)

	var force func()
	if forceExit {
		force = func() { os.Exit(130) }
	}
	ctx, _ := watchSignals(context.Background(), sigCh, force)
	return ctx
}

// watchSignals cancels the returned context on the first value from sigCh
// and calls force on the second. A nil force ignores later signals. The stop
// func releases the watcher.
func watchSignals(parent context.Context, sigCh <-chan os.Signal, force func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("received shutdown signal, waiting for running work", "signal", sig.String())
			cancel(ErrCancelled)
		case <-done:
			return
		}

		for {
			select {
			case sig := <-sigCh:
				if force == nil {
					slog.Debug("ignoring repeated shutdown signal", "signal", sig.String())
					continue
				}
				slog.Warn("received second shutdown signal, abandoning running work", "signal", sig.String())
				force()
				return
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		select {
		case <-done:
		default:
			close(done)
		}
		cancel(context.Canceled)
	}
	return ctx, stop
}
