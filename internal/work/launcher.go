package work

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/aryankumar/concur/internal/util"
)

// DefaultWaitDelay bounds how long a cancelled worker process may take to
// write its response before it is killed
const DefaultWaitDelay = 10 * time.Second

// Launcher delivers one Request to a worker and returns its Response
type Launcher interface {
	Launch(ctx context.Context, req Request) (*Response, error)
}

// Command launches a fresh OS process per Request. The process must call Serve
// with a Registry that knows the requested unit.
type Command struct {
	// Path is the executable to run
	Path string

	// Args are passed to the executable, e.g. "worker" and config flags
	Args []string

	// Env is appended to the parent's environment
	Env []string

	// Stderr receives the child's logs. Defaults to os.Stderr.
	Stderr io.Writer

	// WaitDelay defaults to DefaultWaitDelay
	WaitDelay time.Duration

	Logger *slog.Logger
}

// SelfCommand returns a Command that re-runs the current executable with args
func SelfCommand(logger *slog.Logger, args ...string) (*Command, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}

	return &Command{Path: path, Args: args, Logger: logger}, nil
}

// Launch runs the command, writes req to its stdin and decodes its stdout.
// Cancelling ctx interrupts the child, which reports its remaining items as
// cancelled.
func (c *Command) Launch(ctx context.Context, req Request) (*Response, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var stdin bytes.Buffer
	if err := json.NewEncoder(&stdin).Encode(req); err != nil {
		return nil, util.NewSerializationError("encode request", err)
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdin = &stdin
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = c.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	runErr := cmd.Run()

	logger.Debug("worker process exited",
		"worker", req.Worker,
		"pid", pid(cmd),
		"duration", time.Since(start),
		"error", runErr)

	var resp Response
	if err := json.NewDecoder(&stdout).Decode(&resp); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("worker %d process failed: %w", req.Worker, runErr)
		}
		return nil, util.NewSerializationError("decode response", err)
	}

	return &resp, nil
}

// String renders the command line for logs
func (c *Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

func pid(cmd *exec.Cmd) int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

// Local serves Requests in the current process. Items still make the full
// JSON round trip, which makes it useful for exercising the wire protocol
// without spawning processes.
type Local struct {
	Registry *Registry
}

// Launch implements Launcher
func (l Local) Launch(ctx context.Context, req Request) (*Response, error) {
	var in, out bytes.Buffer
	if err := json.NewEncoder(&in).Encode(req); err != nil {
		return nil, util.NewSerializationError("encode request", err)
	}

	if err := Serve(ctx, l.Registry, &in, &out); err != nil {
		return nil, err
	}

	var resp Response
	if err := json.NewDecoder(&out).Decode(&resp); err != nil {
		return nil, util.NewSerializationError("decode response", err)
	}
	return &resp, nil
}
