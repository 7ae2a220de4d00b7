package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by New when the pipeline parameters are unusable.
var ErrInvalidConfig = errors.New("segment: invalid config")

// Config holds the foreground mask pipeline parameters.
type Config struct {
	// Background model (MOG2)
	History       int     `json:"history"`        // Frames that shape the model
	VarThreshold  float64 `json:"var_threshold"`  // Mahalanobis distance for "background"
	DetectShadows bool    `json:"detect_shadows"` // Mark shadows as gray (127)

	// Denoising
	BlurKernel int     `json:"blur_kernel"` // Gaussian kernel size (odd)
	Threshold  float32 `json:"threshold"`   // Binarization level
	MaxValue   float32 `json:"max_value"`   // Value written for foreground

	// Morphology: closing then opening with an all-ones square
	MorphKernel int `json:"morph_kernel"`
}

// DefaultConfig returns the tuned pipeline: OpenCV's MOG2 defaults,
// 5×5 blur, threshold 30 of 255 and 5×5 close/open.
func DefaultConfig() Config {
	return Config{
		History:       500,
		VarThreshold:  16,
		DetectShadows: true,

		BlurKernel: 5,
		Threshold:  30,
		MaxValue:   255,

		MorphKernel: 5,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var problems []string

	if c.History <= 0 {
		problems = append(problems, "history must be positive")
	}
	if c.VarThreshold <= 0 {
		problems = append(problems, "var_threshold must be positive")
	}
	if c.BlurKernel <= 0 || c.BlurKernel%2 == 0 {
		problems = append(problems, "blur_kernel must be a positive odd number")
	}
	if c.MaxValue <= 0 || c.MaxValue > 255 {
		problems = append(problems, "max_value must be in (0, 255]")
	}
	if c.Threshold < 0 || c.Threshold >= c.MaxValue {
		problems = append(problems, "threshold must be in [0, max_value)")
	}
	if c.MorphKernel <= 0 {
		problems = append(problems, "morph_kernel must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, problems)
	}
	return nil
}
