package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aryankumar/concur/internal/work"
)

const workerEnv = "CONCUR_STRATEGY_TEST_WORKER"

// TestMain doubles as the process pool's worker when re-executed
func TestMain(m *testing.M) {
	if os.Getenv(workerEnv) == "1" {
		reg, err := testRegistry()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err = work.Serve(ctx, reg, os.Stdin, os.Stdout)
		stop()
		if err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	if _, err := testRegistry(); err != nil {
		fmt.Fprintln(os.Stderr, "test units do not register:", err)
		os.Exit(2)
	}
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testLauncher(t *testing.T) work.Launcher {
	t.Helper()
	cmd, err := work.SelfCommand(testLogger())
	if err != nil {
		t.Fatalf("SelfCommand failed: %v", err)
	}
	cmd.Env = []string{workerEnv + "=1"}
	return cmd
}

var squareUnit = work.Unit[int, int]{
	Name: "square",
	Sync: func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	},
}

const sleepFor = 20 * time.Millisecond

var sleepUnit = work.Unit[int, int]{
	Name: "sleep",
	Sync: func(ctx context.Context, n int) (int, error) {
		time.Sleep(sleepFor)
		return n, nil
	},
}

// failUnit fails on every item whose value ends in 3 or 7
var failUnit = work.Unit[int, int]{
	Name: "fail",
	Sync: func(ctx context.Context, n int) (int, error) {
		if n%10 == 3 || n%10 == 7 {
			return 0, errors.New("unlucky number")
		}
		return n, nil
	},
}

type fileItem struct {
	Dir string `json:"dir"`
	ID  int    `json:"id"`
}

var writeUnit = work.Unit[fileItem, string]{
	Name: "write",
	Sync: func(ctx context.Context, item fileItem) (string, error) {
		path := filepath.Join(item.Dir, strconv.Itoa(item.ID)+".txt")
		content := fmt.Sprintf("%d\nwritten by pid %d\n", item.ID, os.Getpid())
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", err
		}
		return path, nil
	},
}

// blockUnit waits until the run is cancelled
var blockUnit = work.Unit[int, int]{
	Name: "block",
	Sync: func(ctx context.Context, n int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	},
}

func testRegistry() (*work.Registry, error) {
	reg := work.NewRegistry(testLogger())
	for _, register := range []func() error{
		func() error { return work.Register(reg, squareUnit) },
		func() error { return work.Register(reg, sleepUnit) },
		func() error { return work.Register(reg, failUnit) },
		func() error { return work.Register(reg, writeUnit) },
		func() error { return work.Register(reg, blockUnit) },
	} {
		if err := register(); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func mustRegistry(t *testing.T) *work.Registry {
	t.Helper()
	reg, err := testRegistry()
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return reg
}

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}
