// Package capture provides frame sources for the measuring loop.
//
// This package supports multiple backends:
//   - Device - a local camera opened by index (the default)
//   - File - a video file, image sequence or stream URL
//   - Mock - scripted frames for CI/testing without hardware
package capture

import (
	"fmt"
	"strconv"
)

// Backend represents the frame source type.
type Backend string

const (
	// BackendAuto picks Device for numeric devices and File otherwise.
	BackendAuto Backend = "auto"
	// BackendDevice opens a camera by index.
	BackendDevice Backend = "device"
	// BackendFile opens a video file or stream URL.
	BackendFile Backend = "file"
	// BackendMock replays synthetic frames.
	BackendMock Backend = "mock"
)

// Config holds capture configuration.
type Config struct {
	// Backend specifies which source to use.
	// Default: "auto"
	Backend Backend `json:"backend"`

	// Device is a camera index ("1") or a path/URL.
	// Default: "1"
	Device string `json:"device"`

	// Requested frame geometry. Zero keeps the driver default.
	Width  int     `json:"width"`
	Height int     `json:"height"`
	FPS    float64 `json:"fps"`

	// MockFrames is how many frames the mock backend yields before failing.
	MockFrames int `json:"mock_frames"`
}

// DefaultConfig returns a Config for the measuring rig's camera.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendAuto,
		Device:     "1",
		MockFrames: 100,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendDevice, BackendFile, BackendMock, "":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend != BackendMock && c.Device == "" {
		return fmt.Errorf("device must be set")
	}
	if c.Backend == BackendDevice {
		if _, err := strconv.Atoi(c.Device); err != nil {
			return fmt.Errorf("device backend needs a numeric index, got %q", c.Device)
		}
	}
	if c.Width < 0 || c.Height < 0 || c.FPS < 0 {
		return fmt.Errorf("width, height and fps must not be negative")
	}
	if c.Backend == BackendMock && c.MockFrames < 0 {
		return fmt.Errorf("mock_frames must not be negative, got %d", c.MockFrames)
	}
	return nil
}

// resolve returns the concrete backend for c.
func (c *Config) resolve() Backend {
	if c.Backend != BackendAuto && c.Backend != "" {
		return c.Backend
	}
	if _, err := strconv.Atoi(c.Device); err == nil {
		return BackendDevice
	}
	return BackendFile
}
