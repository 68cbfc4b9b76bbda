package workload

import (
	"context"
	"log/slog"

	"github.com/aryankumar/concur/internal/async"
	"github.com/aryankumar/concur/internal/scraper"
	"github.com/aryankumar/concur/internal/sink"
	"github.com/aryankumar/concur/internal/work"
)

// SummaryName is the registry name of the I/O-bound unit
const SummaryName = "summary"

// Summaries fetches a character's wiki summary and writes it to the sink
type Summaries struct {
	Client *scraper.Client
	Sink   *sink.File
}

// Fetch processes one character and returns the path written
func (s Summaries) Fetch(ctx context.Context, name string) (string, error) {
	summary, err := s.Client.Summary(ctx, name)
	if err != nil {
		return "", err
	}
	return s.Sink.Write(ctx, name, sink.Content(name, summary))
}

// FetchAsync is Fetch as a cooperative task, suspending on the request and
// on the file write
func (s Summaries) FetchAsync(t *async.Task, name string) (string, error) {
	summary, err := async.Await(t, func(ctx context.Context) (string, error) {
		return s.Client.Summary(ctx, name)
	})
	if err != nil {
		return "", err
	}

	return async.Await(t, func(ctx context.Context) (string, error) {
		return s.Sink.Write(ctx, name, sink.Content(name, summary))
	})
}

// Unit returns the I/O-bound unit
func (s Summaries) Unit() work.Unit[string, string] {
	return work.Unit[string, string]{
		Name:  SummaryName,
		Sync:  s.Fetch,
		Async: s.FetchAsync,
	}
}

// NewRegistry registers every workload. The coordinator and its worker
// processes must build it from the same configuration.
func NewRegistry(s Summaries, logger *slog.Logger) (*work.Registry, error) {
	reg := work.NewRegistry(logger)

	if err := work.Register(reg, PowUnit()); err != nil {
		return nil, err
	}
	if err := work.Register(reg, s.Unit()); err != nil {
		return nil, err
	}

	return reg, nil
}
