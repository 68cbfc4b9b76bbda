package executor

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCountSuccessful(t *testing.T) {
	tests := []struct {
		name     string
		results  []Result
		expected int
	}{
		{
			name:     "empty results",
			results:  []Result{},
			expected: 0,
		},
		{
			name: "all successful",
			results: []Result{
				{Name: "worker-0"},
				{Name: "worker-1"},
				{Name: "worker-2"},
			},
			expected: 3,
		},
		{
			name: "all failed",
			results: []Result{
				{Name: "worker-0", Error: errors.New("error1")},
				{Name: "worker-1", Error: errors.New("error2")},
			},
			expected: 0,
		},
		{
			name: "mixed",
			results: []Result{
				{Name: "worker-0"},
				{Name: "worker-1", Error: errors.New("error")},
				{Name: "worker-2"},
				{Name: "worker-3", Error: errors.New("error")},
			},
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountSuccessful(tt.results); got != tt.expected {
				t.Errorf("CountSuccessful() = %d, want %d", got, tt.expected)
			}
			if got := CountFailed(tt.results); got != len(tt.results)-tt.expected {
				t.Errorf("CountFailed() = %d, want %d", got, len(tt.results)-tt.expected)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	results := []Result{
		{Name: "worker-0", Index: 0},
		{Name: "worker-1", Index: 1, Error: errors.New("boom")},
		{Name: "worker-2", Index: 2},
	}

	ok, failed := Split(results)
	if len(ok) != 2 || ok[0].Name != "worker-0" || ok[1].Name != "worker-2" {
		t.Errorf("ok = %+v", ok)
	}
	if len(failed) != 1 || failed[0].Name != "worker-1" {
		t.Errorf("failed = %+v", failed)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		results   []Result
		mean      time.Duration
		slowest   time.Duration
		fastest   time.Duration
		imbalance float64
	}{
		{
			name:    "empty",
			results: []Result{},
		},
		{
			name:      "single",
			results:   []Result{{Duration: 100 * time.Millisecond}},
			mean:      100 * time.Millisecond,
			slowest:   100 * time.Millisecond,
			fastest:   100 * time.Millisecond,
			imbalance: 1,
		},
		{
			name: "last shard holds the remainder",
			results: []Result{
				{Duration: 100 * time.Millisecond},
				{Duration: 100 * time.Millisecond},
				{Duration: 400 * time.Millisecond},
			},
			mean:      200 * time.Millisecond,
			slowest:   400 * time.Millisecond,
			fastest:   100 * time.Millisecond,
			imbalance: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.results)
			if s.Total != len(tt.results) {
				t.Errorf("Total = %d, want %d", s.Total, len(tt.results))
			}
			if s.Mean != tt.mean || s.Slowest != tt.slowest || s.Fastest != tt.fastest {
				t.Errorf("durations = %v/%v/%v, want %v/%v/%v", s.Mean, s.Slowest, s.Fastest, tt.mean, tt.slowest, tt.fastest)
			}
			if s.Imbalance != tt.imbalance {
				t.Errorf("Imbalance = %v, want %v", s.Imbalance, tt.imbalance)
			}
		})
	}
}

func TestSummary_String(t *testing.T) {
	results := []Result{
		{Name: "worker-0", Duration: 100 * time.Millisecond},
		{Name: "worker-1", Error: errors.New("error"), Duration: 200 * time.Millisecond},
		{Name: "worker-2", Duration: 300 * time.Millisecond},
	}

	str := Summarize(results).String()
	for _, want := range []string{"Total: 3", "Successful: 2", "Failed: 1", "Mean: 200ms", "Slowest: 300ms", "Fastest: 100ms", "Imbalance: 1.50x"} {
		if !strings.Contains(str, want) {
			t.Errorf("summary %q missing %q", str, want)
		}
	}
}

func TestSummary_String_Empty(t *testing.T) {
	str := Summarize(nil).String()
	if str != "Total: 0, Successful: 0, Failed: 0" {
		t.Errorf("unexpected empty summary %q", str)
	}
}
