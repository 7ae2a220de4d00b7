package processor

import (
	"fmt"

	"github.com/teslashibe/go-objsize/pkg/display"
	"github.com/teslashibe/go-objsize/pkg/measure"
)

// Config holds the frame loop parameters.
type Config struct {
	// Selection
	MinContourArea float64             `json:"min_contour_area"` // Contours must be strictly larger
	Calibration    measure.Calibration `json:"calibration"`

	// Loop control
	KeyDelay  int    `json:"key_delay_ms"` // Key poll timeout, also paces the loop
	QuitKey   rune   `json:"quit_key"`
	MaxFrames uint64 `json:"max_frames"` // 0 = unlimited

	// Output
	Style    display.Style `json:"-"`
	ShowMask bool          `json:"show_mask"` // Forward the mask to sinks that can show it
}

// DefaultConfig returns the measuring rig defaults.
func DefaultConfig() Config {
	return Config{
		MinContourArea: measure.DefaultMinContourArea,
		Calibration:    measure.DefaultCalibration(),
		KeyDelay:       1,
		QuitKey:        'q',
		Style:          display.DefaultStyle(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if c.MinContourArea < 0 {
		return fmt.Errorf("min_contour_area must not be negative, got %v", c.MinContourArea)
	}
	if c.KeyDelay < 1 {
		// WaitKey(0) blocks forever
		return fmt.Errorf("key_delay_ms must be at least 1, got %d", c.KeyDelay)
	}
	return nil
}
