package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types for concur
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidWorkers indicates a worker count below one
	ErrInvalidWorkers = errors.New("worker count must be at least 1")

	// ErrUnknownUnit indicates a unit of work name that is not registered
	ErrUnknownUnit = errors.New("unknown unit of work")

	// ErrUnknownStrategy indicates a strategy name that is not recognised
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")
)

// PartitionError reports a partitioning request that cannot be satisfied
type PartitionError struct {
	Workers int
	Items   int
	Err     error
}

// Error implements the error interface
func (e *PartitionError) Error() string {
	return fmt.Sprintf("cannot partition %d items across %d workers: %v", e.Items, e.Workers, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *PartitionError) Unwrap() error {
	return e.Err
}

// WorkerError wraps a unit of work failure with the worker and item that produced it
type WorkerError struct {
	// Worker is the worker index, or -1 when the strategy has no workers (sequential, async)
	Worker int

	// Index is the item's position in the original input
	Index int

	// Item is a printable form of the item
	Item string

	Err error
}

// Error implements the error interface
func (e *WorkerError) Error() string {
	if e.Worker < 0 {
		return fmt.Sprintf("item %d (%s): %v", e.Index, e.Item, e.Err)
	}
	return fmt.Sprintf("worker %d: item %d (%s): %v", e.Worker, e.Index, e.Item, e.Err)
}

// Unwrap returns the wrapped error
func (e *WorkerError) Unwrap() error {
	return e.Err
}

// WrapWorkerError wraps an error with worker and item context
func WrapWorkerError(worker, index int, item interface{}, err error) error {
	if err == nil {
		return nil
	}
	return &WorkerError{
		Worker: worker,
		Index:  index,
		Item:   fmt.Sprintf("%v", item),
		Err:    err,
	}
}

// SerializationError reports a value that could not cross the process boundary
type SerializationError struct {
	// Op is what was being (de)serialized, e.g. "encode item"
	Op  string
	Err error
}

// Error implements the error interface
func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization failed (%s): %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// NewSerializationError creates a new serialization error, returning nil for a nil err
func NewSerializationError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SerializationError{Op: op, Err: err}
}

// MultiError aggregates multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 {
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewMultiError creates a new MultiError from a slice of errors, skipping nils
func NewMultiError(errs []error) *MultiError {
	m := &MultiError{
		Errors: make([]error, 0, len(errs)),
	}
	for _, err := range errs {
		if err != nil {
			m.Errors = append(m.Errors, err)
		}
	}
	return m
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// Unwrap lets a validation failure match ErrInvalidConfig
func (v *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCancelled checks if an error is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsWorkerFailure checks if an error came out of a unit of work
func IsWorkerFailure(err error) bool {
	var we *WorkerError
	return errors.As(err, &we)
}

// IsSerialization checks if an error is a process boundary serialization failure
func IsSerialization(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case IsTimeout(err):
		return "Operation timed out. Please try again or increase the timeout value with --timeout flag."
	case IsCancelled(err):
		return "Operation was cancelled."
	case errors.Is(err, ErrInvalidWorkers):
		return "Invalid worker count. Use --workers with a value of at least 1."
	case errors.Is(err, ErrUnknownStrategy):
		return "Unknown strategy. Choose one of: sequential, threaded, process, process-async, async, all."
	case errors.Is(err, ErrUnknownUnit):
		return "Unknown unit of work. The worker process does not know the requested workload."
	case IsSerialization(err):
		return "A work item could not be sent to or read back from a worker process."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file and command-line flags."
	case IsWorkerFailure(err):
		return fmt.Sprintf("A work item failed: %v\nRun with --wide to see the error of every strategy.", err)
	default:
		return err.Error()
	}
}

// CombineErrors combines multiple errors into a single error
// Returns nil if all errors are nil
func CombineErrors(errs ...error) error {
	return NewMultiError(errs).ErrorOrNil()
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
