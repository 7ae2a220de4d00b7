package display

import (
	"image"
	"testing"
	"time"

	"github.com/teslashibe/go-objsize/pkg/measure"
	"gocv.io/x/gocv"
)

func TestHeadlessSink_ScriptedKeys(t *testing.T) {
	h := NewHeadlessSink(WithKeys('a', 'q'))
	defer h.Close()

	want := []int{'a', 'q', NoKey, NoKey}
	for i, w := range want {
		if got := h.PollKey(1); got != w {
			t.Errorf("PollKey #%d = %d, want %d", i, got, w)
		}
	}
}

func TestHeadlessSink_KeyAt(t *testing.T) {
	h := NewHeadlessSink(WithKeyAt(2, 'q'))
	defer h.Close()

	for i := 0; i < 2; i++ {
		if got := h.PollKey(1); got != NoKey {
			t.Fatalf("PollKey #%d = %d, want NoKey", i, got)
		}
	}
	if got := h.PollKey(1); got != 'q' {
		t.Errorf("PollKey #2 = %d, want 'q'", got)
	}
}

func TestHeadlessSink_CloseCounts(t *testing.T) {
	h := NewHeadlessSink(WithLastFrame())
	h.Close()
	h.Close()
	if h.CloseCalls() != 2 {
		t.Errorf("CloseCalls() = %d, want 2", h.CloseCalls())
	}
}

func TestStyle_LabelOrigins(t *testing.T) {
	w, h := DefaultStyle().LabelOrigins(image.Rect(40, 100, 90, 160))
	if w != image.Pt(40, 70) {
		t.Errorf("width label at %v, want (40,70)", w)
	}
	if h != image.Pt(40, 85) {
		t.Errorf("height label at %v, want (40,85)", h)
	}
}

func TestAnnotate(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	box := image.Rect(50, 50, 150, 120)
	m := measure.DefaultCalibration().Measure(1, time.Time{}, measure.Candidate{Area: 7000, Rect: box})
	outline := []image.Point{{70, 70}, {130, 70}, {130, 100}, {70, 100}}

	Annotate(&frame, m, outline, DefaultStyle())

	// BGR order in the Mat
	top := frame.GetVecbAt(50, 100)
	if top[0] != 0 || top[1] != 255 || top[2] != 0 {
		t.Errorf("box edge pixel = %v, want green", top)
	}

	edge := frame.GetVecbAt(70, 100)
	if edge[0] != 255 || edge[1] != 0 || edge[2] != 0 {
		t.Errorf("outline pixel = %v, want blue", edge)
	}

	inside := frame.GetVecbAt(85, 100)
	if inside[0] != 40 || inside[1] != 40 || inside[2] != 40 {
		t.Errorf("interior pixel = %v, want untouched background", inside)
	}
}

func TestHeadlessSink_LastFrame(t *testing.T) {
	h := NewHeadlessSink(WithLastFrame())
	defer h.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 2, 3, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := h.Show(frame); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if h.Shown() != 1 {
		t.Errorf("Shown() = %d, want 1", h.Shown())
	}

	last := h.LastFrame()
	defer last.Close()
	if v := last.GetVecbAt(5, 5); v[2] != 3 {
		t.Errorf("last frame pixel = %v, want copy of shown frame", v)
	}
}
