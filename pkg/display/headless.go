package display

import (
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// HeadlessSink discards frames. It is used on servers without a display and
// in tests, where Keys scripts the key presses seen by the loop.
type HeadlessSink struct {
	mu    sync.Mutex
	keys  []int
	shown int
	last  gocv.Mat
	keep  bool

	// Sleep between polls so a headless loop on a file source does not spin
	pace bool

	closeCalls atomic.Int64
}

// HeadlessOption configures a HeadlessSink.
type HeadlessOption func(*HeadlessSink)

// WithKeys scripts the keys returned by successive PollKey calls.
// After the script runs out PollKey returns NoKey.
func WithKeys(keys ...int) HeadlessOption {
	return func(h *HeadlessSink) {
		h.keys = append(h.keys, keys...)
	}
}

// WithKeyAt makes the n-th PollKey call (zero-based) return key.
func WithKeyAt(n int, key int) HeadlessOption {
	return func(h *HeadlessSink) {
		for len(h.keys) <= n {
			h.keys = append(h.keys, NoKey)
		}
		h.keys[n] = key
	}
}

// WithLastFrame keeps a copy of the last shown frame for inspection.
func WithLastFrame() HeadlessOption {
	return func(h *HeadlessSink) {
		h.keep = true
	}
}

// WithPacing makes PollKey sleep for its delay like a real window would.
func WithPacing() HeadlessOption {
	return func(h *HeadlessSink) {
		h.pace = true
	}
}

// NewHeadlessSink creates a sink with no window.
func NewHeadlessSink(opts ...HeadlessOption) *HeadlessSink {
	h := &HeadlessSink{}
	for _, opt := range opts {
		opt(h)
	}
	if h.keep {
		h.last = gocv.NewMat()
	}
	return h
}

// Show records the frame.
func (h *HeadlessSink) Show(frame gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
	if h.keep {
		frame.CopyTo(&h.last)
	}
	return nil
}

// PollKey returns the next scripted key.
func (h *HeadlessSink) PollKey(delayMs int) int {
	if h.pace && delayMs > 0 {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.keys) == 0 {
		return NoKey
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

// Shown returns how many frames were displayed.
func (h *HeadlessSink) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// LastFrame returns a clone of the last shown frame. The caller owns it.
// Requires WithLastFrame.
func (h *HeadlessSink) LastFrame() gocv.Mat {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.keep {
		return gocv.NewMat()
	}
	return h.last.Clone()
}

// CloseCalls returns how many times Close was called.
func (h *HeadlessSink) CloseCalls() int {
	return int(h.closeCalls.Load())
}

// Close releases the retained frame.
func (h *HeadlessSink) Close() error {
	if h.closeCalls.Add(1) > 1 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.keep {
		h.last.Close()
		h.keep = false
	}
	return nil
}
