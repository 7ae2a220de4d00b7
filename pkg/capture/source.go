package capture

import (
	"fmt"
	"io"
	"log/slog"

	"gocv.io/x/gocv"
)

// Source supplies frames to the measuring loop.
type Source interface {
	// Read overwrites dst with the next frame.
	// Returns an error wrapping ErrCapture when no frame is available.
	Read(dst *gocv.Mat) error

	// Name returns the backend name (e.g., "device:1", "mock").
	Name() string

	// Close releases the device. Safe to call more than once.
	io.Closer
}

// NewSource opens a frame source with the given configuration.
// If cfg.Backend is BackendAuto, numeric devices open a camera and anything
// else is treated as a file or URL.
func NewSource(cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.resolve()

	logger.Info("opening frame source",
		"backend", backend,
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
	)

	switch backend {
	case BackendMock:
		return NewMockSource(cfg.MockFrames, nil, logger), nil
	case BackendDevice, BackendFile:
		return newVideoSource(cfg, backend, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
