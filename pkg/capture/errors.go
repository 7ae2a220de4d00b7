package capture

import (
	"errors"
	"fmt"
)

// ErrCapture is returned when a frame could not be obtained.
// The measuring loop treats it as fatal and does not retry.
var ErrCapture = errors.New("capture: failed to grab frame")

var errSourceClosed = errors.New("source closed")

// CaptureError records which source failed and at which frame.
type CaptureError struct {
	// Source is the backend name (e.g. "device:1").
	Source string

	// Frame is the zero-based index of the read that failed.
	Frame uint64

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture [%s]: frame %d: %v", e.Source, e.Frame, e.Err)
	}
	return fmt.Sprintf("capture [%s]: failed to grab frame %d", e.Source, e.Frame)
}

// Unwrap lets errors.Is match ErrCapture and the cause.
func (e *CaptureError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCapture, e.Err}
	}
	return []error{ErrCapture}
}
