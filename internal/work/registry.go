package work

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aryankumar/concur/internal/util"
)

// handler runs one Request for a registered unit
type handler func(ctx context.Context, req Request) Response

// Registry maps unit names to type-erased handlers. A worker process can only
// run units registered in its own Registry.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]handler
	logger   *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		handlers: make(map[string]handler),
		logger:   logger,
	}
}

// Register adds u to r. Names must be unique.
func Register[T, R any](r *Registry, u Unit[T, R]) error {
	if err := u.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[u.Name]; exists {
		return fmt.Errorf("unit %q already registered", u.Name)
	}

	r.handlers[u.Name] = func(ctx context.Context, req Request) Response {
		items := make([]T, len(req.Items))
		for i, raw := range req.Items {
			if err := json.Unmarshal(raw, &items[i]); err != nil {
				err = util.NewSerializationError(fmt.Sprintf("decode item %d", req.Offset+i), err)
				return Response{Worker: req.Worker, Error: NewWireError(err)}
			}
		}

		var outcomes []Outcome[R]
		switch req.Mode {
		case ModeAsync:
			outcomes = GatherPartition(ctx, r.logger, u.AsyncFunc(), items, req.Offset)
		case ModeSync, "":
			outcomes = RunPartition(ctx, u.Sync, items, req.Offset)
		default:
			return Response{Worker: req.Worker, Error: NewWireError(fmt.Errorf("unsupported mode %q", req.Mode))}
		}

		resp := Response{Worker: req.Worker, Items: make([]Item, len(outcomes))}
		for i, o := range outcomes {
			resp.Items[i] = Item{Index: o.Index, Latency: o.Latency, Error: NewWireError(o.Err)}
			if o.Err != nil {
				continue
			}
			raw, err := json.Marshal(o.Value)
			if err != nil {
				resp.Items[i].Error = NewWireError(util.NewSerializationError(fmt.Sprintf("encode value %d", o.Index), err))
				continue
			}
			resp.Items[i].Value = raw
		}
		return resp
	}

	r.logger.Debug("unit registered", "unit", u.Name)
	return nil
}

// Handle runs req against the unit it names
func (r *Registry) Handle(ctx context.Context, req Request) Response {
	r.mu.RLock()
	h, ok := r.handlers[req.Unit]
	r.mu.RUnlock()

	if !ok {
		return Response{
			Worker: req.Worker,
			Error:  NewWireError(fmt.Errorf("%w: %q", util.ErrUnknownUnit, req.Unit)),
		}
	}

	r.logger.Debug("serving partition",
		"unit", req.Unit,
		"worker", req.Worker,
		"mode", req.Mode,
		"items", len(req.Items))

	return h(ctx, req)
}

// Names returns the registered unit names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
