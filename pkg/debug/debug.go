// Package debug provides global debug flags
package debug

import (
	"fmt"
	"io"
	"os"
)

// Enabled turns on per-frame trace lines (contour counts, selection)
var Enabled bool

// Masks shows the cleaned foreground mask in a second window
// Use --debug-masks to enable
var Masks bool

// Output is where trace lines go. Stdout is reserved for measurements.
var Output io.Writer = os.Stderr

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(Output, format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Fprintln(Output, msg)
	}
}
