package display

import (
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// WindowSink shows frames in a HighGUI window.
type WindowSink struct {
	window *gocv.Window
	mask   *gocv.Window // Only created when mask display is requested
	logger *slog.Logger

	closeOnce sync.Once
}

// NewWindowSink opens a window with the given title. When showMask is set a
// second window displays the cleaned foreground mask.
func NewWindowSink(title string, showMask bool, logger *slog.Logger) *WindowSink {
	if logger == nil {
		logger = slog.Default()
	}
	if title == "" {
		title = DefaultWindowTitle
	}

	w := &WindowSink{
		window: gocv.NewWindow(title),
		logger: logger,
	}
	if showMask {
		w.mask = gocv.NewWindow(title + " (mask)")
	}

	logger.Debug("display window opened", "title", title, "mask", showMask)
	return w
}

// Show displays frame.
func (w *WindowSink) Show(frame gocv.Mat) error {
	w.window.IMShow(frame)
	return nil
}

// ShowMask displays the mask in the secondary window, if there is one.
func (w *WindowSink) ShowMask(mask gocv.Mat) error {
	if w.mask == nil || mask.Empty() {
		return nil
	}
	w.mask.IMShow(mask)
	return nil
}

// PollKey waits for a key press. The delay also paces the loop.
func (w *WindowSink) PollKey(delayMs int) int {
	key := w.window.WaitKey(delayMs)
	if key < 0 {
		return NoKey
	}
	// Some platforms report modifier bits in the high bytes
	return key & 0xFF
}

// Close destroys the windows.
func (w *WindowSink) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.mask != nil {
			w.mask.Close()
		}
		err = w.window.Close()
		w.logger.Debug("display window closed")
	})
	return err
}
