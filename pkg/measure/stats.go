package measure

import "gonum.org/v1/gonum/stat"

// Stats accumulates the sizes measured during a session.
// It is aggregate only: no object identity is kept between frames.
type Stats struct {
	widths  []float64
	heights []float64
}

// Add records one measurement.
func (s *Stats) Add(m Measurement) {
	s.widths = append(s.widths, m.Size.WidthCM)
	s.heights = append(s.heights, m.Size.HeightCM)
}

// Count returns how many measurements were recorded.
func (s *Stats) Count() int {
	return len(s.widths)
}

// Summary is a snapshot of Stats.
type Summary struct {
	Count          int     `json:"count"`
	MeanWidthCM    float64 `json:"mean_width_cm"`
	MeanHeightCM   float64 `json:"mean_height_cm"`
	StdDevWidthCM  float64 `json:"stddev_width_cm"`
	StdDevHeightCM float64 `json:"stddev_height_cm"`
}

// Summary computes mean and sample standard deviation of width and height.
// Standard deviations are zero with fewer than two samples.
func (s *Stats) Summary() Summary {
	sum := Summary{Count: len(s.widths)}
	if sum.Count == 0 {
		return sum
	}
	sum.MeanWidthCM = stat.Mean(s.widths, nil)
	sum.MeanHeightCM = stat.Mean(s.heights, nil)
	if sum.Count > 1 {
		sum.StdDevWidthCM = stat.StdDev(s.widths, nil)
		sum.StdDevHeightCM = stat.StdDev(s.heights, nil)
	}
	return sum
}
