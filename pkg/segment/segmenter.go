// Package segment isolates moving objects with background subtraction
// and returns their outer contours.
package segment

import (
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-objsize/pkg/measure"
	"gocv.io/x/gocv"
)

// Segmenter owns the running background model and the scratch buffers of
// the mask pipeline. It is not safe for concurrent use; the frame loop is
// its only caller.
type Segmenter struct {
	cfg    Config
	logger *slog.Logger

	model  gocv.BackgroundSubtractorMOG2
	kernel gocv.Mat

	fg      gocv.Mat // Raw MOG2 output
	blurred gocv.Mat
	mask    gocv.Mat // Cleaned binary mask

	frames    uint64
	closeOnce sync.Once
}

// New creates a Segmenter with a fresh background model.
func New(cfg Config, logger *slog.Logger) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Segmenter{
		cfg:    cfg,
		logger: logger,
		model:  gocv.NewBackgroundSubtractorMOG2WithParams(cfg.History, cfg.VarThreshold, cfg.DetectShadows),
		// MorphRect is an all-ones square
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cfg.MorphKernel, cfg.MorphKernel)),
		fg:      gocv.NewMat(),
		blurred: gocv.NewMat(),
		mask:    gocv.NewMat(),
	}

	logger.Debug("segmenter ready",
		"history", cfg.History,
		"var_threshold", cfg.VarThreshold,
		"blur_kernel", cfg.BlurKernel,
		"threshold", cfg.Threshold,
		"morph_kernel", cfg.MorphKernel,
	)
	return s, nil
}

// Config returns the pipeline parameters.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// Frames returns how many frames have updated the background model.
func (s *Segmenter) Frames() uint64 {
	return s.frames
}

// Apply updates the background model with frame and rebuilds the cleaned mask.
func (s *Segmenter) Apply(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("segment: empty frame")
	}

	s.model.Apply(frame, &s.fg)
	s.frames++

	ksize := image.Pt(s.cfg.BlurKernel, s.cfg.BlurKernel)
	gocv.GaussianBlur(s.fg, &s.blurred, ksize, 0, 0, gocv.BorderDefault)
	gocv.Threshold(s.blurred, &s.mask, s.cfg.Threshold, s.cfg.MaxValue, gocv.ThresholdBinary)

	// Close fills pinholes, open removes specks
	gocv.MorphologyEx(s.mask, &s.mask, gocv.MorphClose, s.kernel)
	gocv.MorphologyEx(s.mask, &s.mask, gocv.MorphOpen, s.kernel)
	return nil
}

// Contours extracts the outer contours of the current mask, in the order
// OpenCV reports them.
func (s *Segmenter) Contours() []measure.Candidate {
	if s.mask.Empty() {
		return nil
	}

	contours := gocv.FindContours(s.mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	cands := make([]measure.Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		cands = append(cands, measure.Candidate{
			Index:  i,
			Area:   gocv.ContourArea(c),
			Rect:   gocv.BoundingRect(c),
			Points: c.ToPoints(),
		})
	}
	return cands
}

// Process runs Apply followed by Contours.
func (s *Segmenter) Process(frame gocv.Mat) ([]measure.Candidate, error) {
	if err := s.Apply(frame); err != nil {
		return nil, err
	}
	return s.Contours(), nil
}

// Mask returns the last cleaned mask. The Mat is owned by the Segmenter
// and is overwritten by the next Apply.
func (s *Segmenter) Mask() gocv.Mat {
	return s.mask
}

// Close releases the background model and buffers. Safe to call twice.
func (s *Segmenter) Close() error {
	s.closeOnce.Do(func() {
		s.model.Close()
		s.kernel.Close()
		s.fg.Close()
		s.blurred.Close()
		s.mask.Close()
		s.logger.Debug("segmenter closed", "frames", s.frames)
	})
	return nil
}
