// Package sink persists per-item output files.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/aryankumar/concur/internal/util"
)

// lockRetry is how often a contended file lock is retried
const lockRetry = 10 * time.Millisecond

// File writes one "<name>.txt" file per item into Dir. Writers in different
// processes may target the same file, so every write holds an exclusive
// advisory lock on it.
type File struct {
	Dir    string
	logger *slog.Logger
}

// NewFile creates a sink writing into dir
func NewFile(dir string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{Dir: dir, logger: logger}
}

// Content formats a character summary file
func Content(name, summary string) string {
	return name + "\nSummary:\n" + summary
}

// Path returns the file that Write uses for name
func (f *File) Path(name string) string {
	return filepath.Join(f.Dir, fileName(name)+".txt")
}

// Write replaces the file for name with content and returns its path
func (f *File) Write(ctx context.Context, name, content string) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", f.Dir, err)
	}

	path := f.Path(name)
	lock := flock.New(path)

	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return "", fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return "", fmt.Errorf("failed to lock %s", path)
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", util.WrapErrorf(err, "failed to write %s", path)
	}

	f.logger.Debug("file written", "path", path, "bytes", len(content))
	return path, nil
}

// fileName keeps name inside the sink directory
func fileName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}
