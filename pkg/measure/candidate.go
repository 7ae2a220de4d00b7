// Package measure turns foreground contours into physical size estimates.
//
// Everything here is plain geometry and arithmetic so it can be tested
// without a camera or OpenCV.
package measure

import "image"

// DefaultMinContourArea is the enclosed area a contour must strictly exceed
// to be considered an object rather than noise.
const DefaultMinContourArea = 500.0

// Candidate is one external contour found in a foreground mask.
type Candidate struct {
	Index  int             // Position in the extraction order
	Area   float64         // Enclosed contour area in pixels
	Rect   image.Rectangle // Axis-aligned bounding box
	Points []image.Point   // Simplified outline
}

// Qualifies reports whether the candidate's area is strictly above minArea.
func (c Candidate) Qualifies(minArea float64) bool {
	return c.Area > minArea
}

// Filter returns the candidates whose area is strictly above minArea,
// preserving order.
func Filter(cands []Candidate, minArea float64) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Qualifies(minArea) {
			out = append(out, c)
		}
	}
	return out
}

// SelectLargest picks the qualifying candidate with the largest area.
// Ties keep the first one in cands. Returns nil when nothing qualifies.
func SelectLargest(cands []Candidate, minArea float64) *Candidate {
	var best *Candidate
	for i := range cands {
		if !cands[i].Qualifies(minArea) {
			continue
		}
		if best == nil || cands[i].Area > best.Area {
			best = &cands[i]
		}
	}
	return best
}
