package measure

import (
	"errors"
	"image"
	"math"
	"testing"
	"time"
)

func TestCalibration_Estimate(t *testing.T) {
	cal := DefaultCalibration()

	tests := []struct {
		name       string
		box        image.Rectangle
		wantWidth  float64
		wantHeight float64
	}{
		{"reference width", image.Rect(0, 0, 75, 75), 15, 15},
		{"double reference", image.Rect(10, 10, 160, 85), 30, 15},
		{"empty box", image.Rect(5, 5, 5, 5), 0, 0},
		{"one pixel", image.Rect(0, 0, 1, 1), 0.2, 0.2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cal.Estimate(tc.box)
			if math.Abs(got.WidthCM-tc.wantWidth) > 1e-9 {
				t.Errorf("WidthCM: got %v, want %v", got.WidthCM, tc.wantWidth)
			}
			if math.Abs(got.HeightCM-tc.wantHeight) > 1e-9 {
				t.Errorf("HeightCM: got %v, want %v", got.HeightCM, tc.wantHeight)
			}
		})
	}
}

func TestCalibration_ScalingLaw(t *testing.T) {
	cal := DefaultCalibration()
	for px := 0; px <= 2000; px += 7 {
		want := (float64(px) / 75) * 15
		if got := cal.ToCM(px); got != want {
			t.Fatalf("ToCM(%d) = %v, want %v", px, got, want)
		}
		est := cal.Estimate(image.Rect(0, 0, px, px))
		if est.WidthCM != want || est.HeightCM != want {
			t.Fatalf("Estimate(%d) = %+v, want both %v", px, est, want)
		}
	}
}

func TestCalibration_Validate(t *testing.T) {
	if err := DefaultCalibration().Validate(); err != nil {
		t.Fatalf("default calibration invalid: %v", err)
	}

	bad := []Calibration{
		{ReferencePixels: 0, ReferenceCM: 15},
		{ReferencePixels: 75, ReferenceCM: 0},
		{ReferencePixels: -1, ReferenceCM: 15},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidCalibration) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidCalibration", c, err)
		}
	}
}

func TestSelectLargest_Threshold(t *testing.T) {
	tests := []struct {
		name    string
		area    float64
		wantNil bool
	}{
		{"exactly at threshold is excluded", 500, true},
		{"just above threshold is included", 501, false},
		{"well below", 10, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectLargest([]Candidate{{Area: tc.area}}, DefaultMinContourArea)
			if (best == nil) != tc.wantNil {
				t.Errorf("SelectLargest(area=%v): nil=%v, want nil=%v", tc.area, best == nil, tc.wantNil)
			}
		})
	}
}

func TestSelectLargest(t *testing.T) {
	tests := []struct {
		name      string
		cands     []Candidate
		expectNil bool
		expectIdx int
	}{
		{
			name:      "empty list",
			cands:     nil,
			expectNil: true,
		},
		{
			name:      "all filtered",
			cands:     []Candidate{{Index: 0, Area: 100}, {Index: 1, Area: 500}},
			expectNil: true,
		},
		{
			name:      "largest wins",
			cands:     []Candidate{{Index: 0, Area: 600}, {Index: 1, Area: 2000}, {Index: 2, Area: 900}},
			expectIdx: 1,
		},
		{
			name:      "small noise ignored even if first",
			cands:     []Candidate{{Index: 0, Area: 20}, {Index: 1, Area: 501}},
			expectIdx: 1,
		},
		{
			name:      "tie keeps first encountered",
			cands:     []Candidate{{Index: 0, Area: 700}, {Index: 1, Area: 900}, {Index: 2, Area: 900}},
			expectIdx: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectLargest(tc.cands, DefaultMinContourArea)
			if tc.expectNil {
				if best != nil {
					t.Errorf("expected nil, got %+v", best)
				}
				return
			}
			if best == nil {
				t.Fatal("expected a candidate, got nil")
			}
			if best.Index != tc.expectIdx {
				t.Errorf("selected index %d, want %d", best.Index, tc.expectIdx)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	cands := []Candidate{{Index: 0, Area: 500}, {Index: 1, Area: 501}, {Index: 2, Area: 1}, {Index: 3, Area: 5000}}
	got := Filter(cands, DefaultMinContourArea)
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 3 {
		t.Errorf("Filter = %+v, want indexes [1 3]", got)
	}
}

func TestMeasurement_Lines(t *testing.T) {
	cal := DefaultCalibration()
	m := cal.Measure(7, time.Unix(0, 0), Candidate{Area: 9000, Rect: image.Rect(20, 40, 170, 115)})

	if m.AreaPixels != 150*75 {
		t.Errorf("AreaPixels = %d, want %d", m.AreaPixels, 150*75)
	}

	checks := []struct{ got, want string }{
		{m.PixelLine(), "Object size in pixels: 11250"},
		{m.SizeLine(), "Estimated object size: Width: 30.00 cm, Height: 15.00 cm"},
		{m.WidthLabel(), "Width: 30.00 cm"},
		{m.HeightLabel(), "Height: 15.00 cm"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestStats_Summary(t *testing.T) {
	var s Stats
	if sum := s.Summary(); sum.Count != 0 || sum.MeanWidthCM != 0 {
		t.Errorf("empty summary = %+v", sum)
	}

	s.Add(Measurement{Size: SizeEstimate{WidthCM: 15, HeightCM: 10}})
	sum := s.Summary()
	if sum.Count != 1 || sum.MeanWidthCM != 15 || sum.StdDevWidthCM != 0 {
		t.Errorf("single-sample summary = %+v", sum)
	}

	s.Add(Measurement{Size: SizeEstimate{WidthCM: 30, HeightCM: 10}})
	sum = s.Summary()
	if sum.Count != 2 {
		t.Fatalf("Count = %d, want 2", sum.Count)
	}
	if sum.MeanWidthCM != 22.5 {
		t.Errorf("MeanWidthCM = %v, want 22.5", sum.MeanWidthCM)
	}
	if math.Abs(sum.StdDevWidthCM-math.Sqrt(112.5)) > 1e-9 {
		t.Errorf("StdDevWidthCM = %v, want %v", sum.StdDevWidthCM, math.Sqrt(112.5))
	}
	if sum.StdDevHeightCM != 0 {
		t.Errorf("StdDevHeightCM = %v, want 0", sum.StdDevHeightCM)
	}
}
