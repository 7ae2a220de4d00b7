package capture

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// VideoSource reads frames through OpenCV's VideoCapture.
type VideoSource struct {
	cap    *gocv.VideoCapture
	name   string
	logger *slog.Logger

	frames    uint64
	closeOnce sync.Once
}

func newVideoSource(cfg Config, backend Backend, logger *slog.Logger) (*VideoSource, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)

	if backend == BackendDevice {
		idx, convErr := strconv.Atoi(cfg.Device)
		if convErr != nil {
			return nil, fmt.Errorf("device index %q: %w", cfg.Device, convErr)
		}
		vc, err = gocv.OpenVideoCapture(idx)
	} else {
		vc, err = gocv.OpenVideoCapture(cfg.Device)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s %q: %w", backend, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open %s %q: device not available", backend, cfg.Device)
	}

	if cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, cfg.FPS)
	}

	s := &VideoSource{
		cap:    vc,
		name:   fmt.Sprintf("%s:%s", backend, cfg.Device),
		logger: logger,
	}

	logger.Info("frame source opened",
		"source", s.name,
		"width", vc.Get(gocv.VideoCaptureFrameWidth),
		"height", vc.Get(gocv.VideoCaptureFrameHeight),
		"fps", vc.Get(gocv.VideoCaptureFPS),
	)
	return s, nil
}

// Read grabs the next frame into dst.
func (s *VideoSource) Read(dst *gocv.Mat) error {
	idx := s.frames
	if ok := s.cap.Read(dst); !ok || dst.Empty() {
		return &CaptureError{Source: s.name, Frame: idx}
	}
	s.frames++
	return nil
}

// Name returns the backend and device, e.g. "device:1".
func (s *VideoSource) Name() string {
	return s.name
}

// Close releases the capture device.
func (s *VideoSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.cap.Close()
		s.logger.Info("frame source released", "source", s.name, "frames", s.frames)
	})
	return err
}
