package xspec

import (
	"errors"
	"fmt"
)

// Error categories for use with errors.Is. Every typed error below matches
// exactly one of them.
var (
	// ErrInvalidShape marks caller bugs: wrong rank, parameter count or grid
	// size. Nothing was sent to the library.
	ErrInvalidShape = errors.New("invalid buffer shape")

	// ErrEnvironment marks a library that is not configured or failed to
	// start.
	ErrEnvironment = errors.New("model library unavailable")

	// ErrLookup marks a key or index the library does not know.
	ErrLookup = errors.New("lookup failed")

	// ErrNative marks a failure inside the library.
	ErrNative = errors.New("native computation failed")
)

// Catalog errors.
var (
	// ErrUnknownModel indicates a model name that is not registered.
	ErrUnknownModel = errors.New("unrecognized model")

	// ErrPrecisionMismatch indicates a typed lookup whose element type does
	// not match the model's calling convention.
	ErrPrecisionMismatch = errors.New("precision does not match model convention")

	// ErrModelType indicates a lookup for a convolution that found an
	// additive or multiplicative model, or the reverse.
	ErrModelType = errors.New("wrong model type")
)

// ConfigurationError is returned when the environment variable that locates
// the library installation is not set.
type ConfigurationError struct {
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unable to initialize model library: the %s environment variable is not set", e.Variable)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrEnvironment }

// InitializationError is returned when the library's one-time setup failed.
// Output holds what the library printed while it ran.
type InitializationError struct {
	Output string
	Err    error
}

func (e *InitializationError) Error() string {
	msg := "unable to initialize model library"
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InitializationError) Unwrap() error { return e.Err }

func (e *InitializationError) Is(target error) bool { return target == ErrEnvironment }

// DimensionalityError is returned for a buffer that is not one-dimensional.
type DimensionalityError struct {
	Argument string
	Rank     int
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("%s must be 1D, got %d dimensions", e.Argument, e.Rank)
}

func (e *DimensionalityError) Is(target error) bool { return target == ErrInvalidShape }

// ParameterCountError is returned when the parameter vector has the wrong
// length for the model.
type ParameterCountError struct {
	Expected int
	Got      int
}

func (e *ParameterCountError) Error() string {
	return fmt.Sprintf("expected %d parameters but sent %d", e.Expected, e.Got)
}

func (e *ParameterCountError) Is(target error) bool { return target == ErrInvalidShape }

// GridTooSmallError is returned for an energy grid with fewer than
// MinGridEdges edges.
type GridTooSmallError struct {
	Got int
}

func (e *GridTooSmallError) Error() string {
	return fmt.Sprintf("expected at least %d bin edges, got %d", MinGridEdges, e.Got)
}

func (e *GridTooSmallError) Is(target error) bool { return target == ErrInvalidShape }

// GridSizeError is returned when a caller-supplied output buffer does not
// have exactly one element fewer than the grid.
type GridSizeError struct {
	GridLen   int
	OutputLen int
}

func (e *GridSizeError) Error() string {
	return fmt.Sprintf("energy grid size must be 1 more than model: energies has %d elements and model has %d elements",
		e.GridLen, e.OutputLen)
}

func (e *GridSizeError) Is(target error) bool { return target == ErrInvalidShape }

// KeyNotFoundError is returned when the library reports an unknown key.
type KeyNotFoundError struct {
	Kind string // what was looked up, e.g. "element", "model string"
	Key  string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrLookup }

// IndexOutOfRangeError is returned for an index outside [Min, Max].
type IndexOutOfRangeError struct {
	Kind  string
	Index int
	Min   int
	Max   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d is out of range [%d, %d]", e.Kind, e.Index, e.Min, e.Max)
}

func (e *IndexOutOfRangeError) Is(target error) bool { return target == ErrLookup }

// NativeComputationError carries a failure reported by the library. Message
// is the library's own text.
type NativeComputationError struct {
	Op      string
	Message string
	Err     error
}

func (e *NativeComputationError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *NativeComputationError) Unwrap() error { return e.Err }

func (e *NativeComputationError) Is(target error) bool { return target == ErrNative }

// nativeError wraps err from operation op. Errors that are already typed
// pass through.
func nativeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var nce *NativeComputationError
	if errors.As(err, &nce) {
		return err
	}
	return &NativeComputationError{Op: op, Message: err.Error(), Err: err}
}
