package executor

import (
	"fmt"
	"strings"
	"time"
)

// CountSuccessful returns the number of tasks that returned no error
func CountSuccessful(results []Result) int {
	count := 0
	for _, r := range results {
		if r.Error == nil {
			count++
		}
	}
	return count
}

// CountFailed returns the number of tasks that returned an error
func CountFailed(results []Result) int {
	return len(results) - CountSuccessful(results)
}

// Split separates successful results from failed ones, keeping order
func Split(results []Result) (ok, failed []Result) {
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, r)
			continue
		}
		ok = append(ok, r)
	}
	return ok, failed
}

// Summary aggregates the tasks of one Execute call. With one task per
// partition, Imbalance shows how unevenly the work was split.
type Summary struct {
	Total      int
	Successful int
	Failed     int
	Mean       time.Duration
	Slowest    time.Duration
	Fastest    time.Duration

	// Imbalance is Slowest / Mean; 1 means every task took equally long
	Imbalance float64
}

// Summarize creates a summary of the results
func Summarize(results []Result) Summary {
	s := Summary{
		Total:      len(results),
		Successful: CountSuccessful(results),
		Failed:     CountFailed(results),
	}
	if s.Total == 0 {
		return s
	}

	var total time.Duration
	s.Fastest = results[0].Duration
	for _, r := range results {
		total += r.Duration
		s.Slowest = max(s.Slowest, r.Duration)
		s.Fastest = min(s.Fastest, r.Duration)
	}
	s.Mean = total / time.Duration(s.Total)

	if s.Mean > 0 {
		s.Imbalance = float64(s.Slowest) / float64(s.Mean)
	}
	return s
}

// String returns a one-line rendering for logs
func (s Summary) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total: %d, Successful: %d, Failed: %d", s.Total, s.Successful, s.Failed)
	if s.Total > 0 {
		fmt.Fprintf(&sb, ", Mean: %s, Slowest: %s, Fastest: %s, Imbalance: %.2fx",
			s.Mean.Round(time.Millisecond),
			s.Slowest.Round(time.Millisecond),
			s.Fastest.Round(time.Millisecond),
			s.Imbalance)
	}

	return sb.String()
}
