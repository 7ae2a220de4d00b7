package capture

import (
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mock frame geometry.
const (
	MockWidth  = 320
	MockHeight = 240
)

// SceneFunc draws frame i into dst.
type SceneFunc func(i int, dst *gocv.Mat)

// MockSource is a scripted frame source for testing.
// It yields a fixed number of frames, then fails with ErrCapture like a
// camera that was unplugged.
type MockSource struct {
	limit  int
	scene  SceneFunc
	logger *slog.Logger

	mu     sync.Mutex
	next   int
	closed bool

	// Stats
	closeCalls atomic.Int64
}

// NewMockSource creates a mock source yielding limit frames.
// A nil scene uses HoppingBox.
func NewMockSource(limit int, scene SceneFunc, logger *slog.Logger) *MockSource {
	if scene == nil {
		scene = HoppingBox(image.Pt(80, 60), 20)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSource{
		limit:  limit,
		scene:  scene,
		logger: logger,
	}
}

// Read draws the next scripted frame into dst.
func (m *MockSource) Read(dst *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return &CaptureError{Source: m.Name(), Frame: uint64(m.next), Err: errSourceClosed}
	}
	if m.next >= m.limit {
		return &CaptureError{Source: m.Name(), Frame: uint64(m.next)}
	}

	m.scene(m.next, dst)
	m.next++
	return nil
}

// Name returns "mock".
func (m *MockSource) Name() string {
	return "mock"
}

// Served returns how many frames were delivered.
func (m *MockSource) Served() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

// CloseCalls returns how many times Close was called.
func (m *MockSource) CloseCalls() int {
	return int(m.closeCalls.Load())
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.closeCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.logger.Debug("mock frame source closed", "frames", m.next)
	}
	return nil
}

// BlankScene fills every frame with a uniform gray.
func BlankScene(i int, dst *gocv.Mat) {
	fill(dst)
}

// HoppingBox returns a scene that shows the empty background for warmup
// frames and then a white box of the given size that jumps to the next cell
// of a grid every frame. Cells do not overlap, so no pixel stays covered
// long enough for the background model to absorb the box.
func HoppingBox(size image.Point, warmup int) SceneFunc {
	const margin = 10
	cols := max(1, (MockWidth-margin)/(size.X+margin))
	rows := max(1, (MockHeight-margin)/(size.Y+margin))

	return func(i int, dst *gocv.Mat) {
		fill(dst)
		if i < warmup {
			return
		}
		cell := (i - warmup) % (cols * rows)
		x := margin + (cell%cols)*(size.X+margin)
		y := margin + (cell/cols)*(size.Y+margin)
		box := image.Rect(x, y, x+size.X, y+size.Y)
		gocv.Rectangle(dst, box, color.RGBA{R: 250, G: 250, B: 250, A: 0}, -1)
	}
}

func fill(dst *gocv.Mat) {
	if dst.Empty() || dst.Rows() != MockHeight || dst.Cols() != MockWidth || dst.Type() != gocv.MatTypeCV8UC3 {
		blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), MockHeight, MockWidth, gocv.MatTypeCV8UC3)
		defer blank.Close()
		blank.CopyTo(dst)
		return
	}
	dst.SetTo(gocv.NewScalar(40, 40, 40, 0))
}
