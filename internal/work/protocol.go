package work

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aryankumar/concur/internal/util"
)

// Mode selects how a worker process runs its partition
type Mode string

const (
	// ModeSync processes the partition in order, stopping at the first failure
	ModeSync Mode = "sync"

	// ModeAsync runs every item of the partition as a cooperative task
	ModeAsync Mode = "async"
)

// Request is sent by the coordinator to a worker process on stdin
type Request struct {
	Unit   string `json:"unit"`
	Worker int    `json:"worker"`
	Mode   Mode   `json:"mode"`

	// Offset is the index of Items[0] in the original input
	Offset int               `json:"offset"`
	Items  []json.RawMessage `json:"items"`
}

// Response is written by a worker process to stdout
type Response struct {
	Worker int    `json:"worker"`
	Items  []Item `json:"items"`

	// Error is set when the request as a whole could not be served
	Error *WireError `json:"error,omitempty"`
}

// Item is the outcome of one item in a Response
type Item struct {
	Index   int             `json:"index"`
	Value   json.RawMessage `json:"value,omitempty"`
	Latency time.Duration   `json:"latency"`
	Error   *WireError      `json:"error,omitempty"`
}

// Error kinds carried across the process boundary
const (
	KindUnit          = "unit"
	KindCancelled     = "cancelled"
	KindSerialization = "serialization"
	KindUnknownUnit   = "unknown_unit"
)

// WireError is an error flattened for transport. Err restores enough of its
// identity for errors.Is and the util checkers to work in the coordinator.
type WireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewWireError flattens err, returning nil for a nil err
func NewWireError(err error) *WireError {
	if err == nil {
		return nil
	}

	kind := KindUnit
	switch {
	case util.IsCancelled(err):
		kind = KindCancelled
	case util.IsSerialization(err):
		kind = KindSerialization
	case errors.Is(err, util.ErrUnknownUnit):
		kind = KindUnknownUnit
	}

	return &WireError{Kind: kind, Message: err.Error()}
}

// Err converts the wire form back into an error
func (e *WireError) Err() error {
	if e == nil {
		return nil
	}

	var cause error
	switch e.Kind {
	case KindCancelled:
		cause = util.ErrCancelled
	case KindSerialization:
		cause = &util.SerializationError{Op: "worker", Err: errors.New(e.Message)}
	case KindUnknownUnit:
		cause = util.ErrUnknownUnit
	}

	return &remoteError{msg: e.Message, cause: cause}
}

// remoteError keeps the child's message verbatim
type remoteError struct {
	msg   string
	cause error
}

func (e *remoteError) Error() string {
	return e.msg
}

func (e *remoteError) Unwrap() error {
	return e.cause
}

// EncodeItems marshals every item for a Request
func EncodeItems[T any](items []T) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, len(items))
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return nil, util.NewSerializationError(fmt.Sprintf("encode item %d", i), err)
		}
		raw[i] = b
	}
	return raw, nil
}

// DecodeOutcomes converts the items of a Response into typed outcomes
func DecodeOutcomes[R any](resp *Response) []Outcome[R] {
	outcomes := make([]Outcome[R], len(resp.Items))
	for i, it := range resp.Items {
		outcomes[i] = Outcome[R]{Index: it.Index, Latency: it.Latency}
		if it.Error != nil {
			outcomes[i].Err = it.Error.Err()
			continue
		}
		if err := json.Unmarshal(it.Value, &outcomes[i].Value); err != nil {
			outcomes[i].Err = util.NewSerializationError(fmt.Sprintf("decode value %d", it.Index), err)
		}
	}
	return outcomes
}

// Serve reads one Request from r, runs it against reg and writes the Response
// to w. It returns an error only when the exchange itself fails.
func Serve(ctx context.Context, reg *Registry, r io.Reader, w io.Writer) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		err = util.NewSerializationError("decode request", err)
		if encErr := json.NewEncoder(w).Encode(Response{Worker: -1, Error: NewWireError(err)}); encErr != nil {
			return util.CombineErrors(err, encErr)
		}
		return err
	}

	resp := reg.Handle(ctx, req)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return util.NewSerializationError("encode response", err)
	}
	return nil
}
