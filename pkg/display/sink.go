// Package display shows annotated frames and reads the keyboard.
package display

import (
	"io"

	"gocv.io/x/gocv"
)

// DefaultWindowTitle is the title of the main window.
const DefaultWindowTitle = "Webcam Object Size Detection"

// NoKey is returned by PollKey when nothing was pressed.
const NoKey = -1

// Sink receives annotated frames.
type Sink interface {
	// Show displays frame. The sink must not keep a reference to it.
	Show(frame gocv.Mat) error

	// PollKey waits up to delayMs milliseconds for a key press and returns
	// its code, or NoKey.
	PollKey(delayMs int) int

	// Close destroys windows. Safe to call more than once.
	io.Closer
}

// MaskViewer is implemented by sinks that can show the foreground mask
// next to the frame.
type MaskViewer interface {
	ShowMask(mask gocv.Mat) error
}
