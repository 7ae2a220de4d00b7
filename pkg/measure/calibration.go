package measure

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrInvalidCalibration is returned when a calibration cannot scale sizes.
var ErrInvalidCalibration = errors.New("measure: invalid calibration")

// Calibration maps pixels to centimeters with a single reference object:
// ReferencePixels wide on screen is ReferenceCM wide in reality.
type Calibration struct {
	ReferencePixels float64 `json:"reference_pixels"`
	ReferenceCM     float64 `json:"reference_cm"`
}

// DefaultCalibration returns the reference used by the measuring rig:
// 75 px ↔ 15 cm.
func DefaultCalibration() Calibration {
	return Calibration{
		ReferencePixels: 75,
		ReferenceCM:     15,
	}
}

// Validate checks that the calibration can be used for scaling.
func (c Calibration) Validate() error {
	if c.ReferencePixels <= 0 {
		return fmt.Errorf("%w: reference pixels must be positive, got %v", ErrInvalidCalibration, c.ReferencePixels)
	}
	if c.ReferenceCM <= 0 {
		return fmt.Errorf("%w: reference size must be positive, got %v", ErrInvalidCalibration, c.ReferenceCM)
	}
	return nil
}

// ToCM converts a pixel length to centimeters.
func (c Calibration) ToCM(px int) float64 {
	return (float64(px) / c.ReferencePixels) * c.ReferenceCM
}

// SizeEstimate is the physical size of a bounding box.
type SizeEstimate struct {
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`
}

// Estimate scales a bounding box to centimeters.
func (c Calibration) Estimate(box image.Rectangle) SizeEstimate {
	return SizeEstimate{
		WidthCM:  c.ToCM(box.Dx()),
		HeightCM: c.ToCM(box.Dy()),
	}
}

// Measurement is the result for one frame that contained an object.
type Measurement struct {
	Frame       uint64          `json:"frame"`
	Time        time.Time       `json:"time"`
	Box         image.Rectangle `json:"box"`
	AreaPixels  int             `json:"area_pixels"`
	ContourArea float64         `json:"contour_area"`
	Size        SizeEstimate    `json:"size"`
}

// Measure builds a Measurement for the selected candidate.
func (c Calibration) Measure(frame uint64, at time.Time, cand Candidate) Measurement {
	return Measurement{
		Frame:       frame,
		Time:        at,
		Box:         cand.Rect,
		AreaPixels:  cand.Rect.Dx() * cand.Rect.Dy(),
		ContourArea: cand.Area,
		Size:        c.Estimate(cand.Rect),
	}
}

// PixelLine is the first diagnostic line printed for a measurement.
func (m Measurement) PixelLine() string {
	return fmt.Sprintf("Object size in pixels: %d", m.AreaPixels)
}

// SizeLine is the second diagnostic line printed for a measurement.
func (m Measurement) SizeLine() string {
	return fmt.Sprintf("Estimated object size: Width: %.2f cm, Height: %.2f cm", m.Size.WidthCM, m.Size.HeightCM)
}

// WidthLabel is the overlay text for the width.
func (m Measurement) WidthLabel() string {
	return fmt.Sprintf("Width: %.2f cm", m.Size.WidthCM)
}

// HeightLabel is the overlay text for the height.
func (m Measurement) HeightLabel() string {
	return fmt.Sprintf("Height: %.2f cm", m.Size.HeightCM)
}
