package native

import (
	"errors"
	"fmt"
)

// NativeError represents a failure reported by the model library.
type NativeError struct {
	Op      string // Operation that failed (e.g., "init", "tabint")
	Code    int    // Status code from the library (0 when none was reported)
	Message string // Text reported by the library
	Err     error  // Wrapped underlying error (if any)
}

// Error implements the error interface.
func (e *NativeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("xspec %s: %s (code: %d): %v", e.Op, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("xspec %s: %s (code: %d)", e.Op, e.Message, e.Code)
}

// Unwrap returns the wrapped error, allowing use with errors.Is and errors.As.
func (e *NativeError) Unwrap() error {
	return e.Err
}

// Sentinel errors for common failure conditions.
var (
	// ErrCaptureBusy indicates a stream capture was requested while another
	// one was still active. Captures redirect process-wide descriptors and
	// cannot nest.
	ErrCaptureBusy = errors.New("stream capture already active")

	// ErrUnknownTable indicates an abundance or cross-section table name the
	// library does not know.
	ErrUnknownTable = errors.New("unknown table")

	// ErrTableModel indicates a table-model file could not be read or
	// evaluated.
	ErrTableModel = errors.New("table model failed")

	// ErrModelFailed indicates a model entry point reported a failure.
	ErrModelFailed = errors.New("model evaluation failed")
)

// modelStatus converts the status a model entry point returned through the
// shim. A non-zero rc means the model threw; msg is what it said.
func modelStatus(op string, rc int, msg string) error {
	if rc == 0 {
		return nil
	}
	if msg == "" {
		msg = "model raised an exception"
	}
	return &NativeError{Op: op, Code: rc, Message: msg, Err: ErrModelFailed}
}
