// Package timer measures wall-clock duration around an operation and reports it.
package timer

import (
	"log/slog"
	"time"
)

// Measure runs op and returns how long it took. The duration is logged at
// Info level under name whether or not op fails.
func Measure(name string, logger *slog.Logger, op func() error) (time.Duration, error) {
	_, elapsed, err := MeasureValue(name, logger, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return elapsed, err
}

// MeasureValue is Measure for operations that produce a value.
func MeasureValue[T any](name string, logger *slog.Logger, op func() (T, error)) (result T, elapsed time.Duration, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	sw := Start()
	defer func() {
		elapsed = sw.Elapsed()
		logger.Info("total duration",
			"name", name,
			"seconds", elapsed.Seconds(),
			"failed", err != nil)
	}()

	result, err = op()
	return result, elapsed, err
}

// Stopwatch captures a monotonic start time.
type Stopwatch struct {
	start time.Time
}

// Start returns a running stopwatch
func Start() Stopwatch {
	return Stopwatch{start: time.Now()}
}

// Elapsed returns the time since Start
func (s Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}
