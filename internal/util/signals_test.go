package util

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWatchSignals(t *testing.T) {
	sigCh := make(chan os.Signal, 2)
	forced := make(chan struct{})

	ctx, stop := watchSignals(context.Background(), sigCh, func() { close(forced) })
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before any signal")
	default:
	}

	sigCh <- syscall.SIGINT
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled after first signal")
	}
	if !errors.Is(context.Cause(ctx), ErrCancelled) {
		t.Errorf("cause = %v, want ErrCancelled", context.Cause(ctx))
	}

	select {
	case <-forced:
		t.Fatal("force called after a single signal")
	default:
	}

	sigCh <- syscall.SIGTERM
	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("force was not called after second signal")
	}
}

func TestWatchSignals_Stop(t *testing.T) {
	sigCh := make(chan os.Signal, 1)

	ctx, stop := watchSignals(context.Background(), sigCh, func() {
		t.Error("force must not run after stop")
	})
	stop()
	stop()

	<-ctx.Done()
	if errors.Is(context.Cause(ctx), ErrCancelled) {
		t.Error("stop should not report a signal cancellation")
	}
}

func TestWatchSignals_ParentCancelled(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := watchSignals(parent, make(chan os.Signal), func() {})
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context not cancelled with parent")
	}
}

func TestWatchSignals_WithoutForce(t *testing.T) {
	sigCh := make(chan os.Signal)

	ctx, stop := watchSignals(context.Background(), sigCh, nil)
	defer stop()

	// unbuffered sends only complete once the watcher receives them
	sigCh <- syscall.SIGINT
	sigCh <- syscall.SIGINT
	sigCh <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	if !errors.Is(context.Cause(ctx), ErrCancelled) {
		t.Errorf("cause = %v, want ErrCancelled", context.Cause(ctx))
	}
}
