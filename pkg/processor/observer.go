package processor

import (
	"github.com/teslashibe/go-objsize/pkg/measure"
	"gocv.io/x/gocv"
)

// FrameEvent is passed to observers after a frame is displayed.
type FrameEvent struct {
	Index uint64

	// Frame is the annotated frame. It is only valid during the OnFrame call.
	Frame gocv.Mat

	// Measurement is nil when no object qualified.
	Measurement *measure.Measurement
}

// Observer is notified of every processed frame, on the loop goroutine.
// Implementations must copy anything they keep and must not block.
type Observer interface {
	OnFrame(ev FrameEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev FrameEvent)

// OnFrame calls f.
func (f ObserverFunc) OnFrame(ev FrameEvent) {
	f(ev)
}
