// Package processor runs the measuring loop: read a frame, find the largest
// moving object, estimate its size, annotate and display.
//
// The loop is strictly sequential. Each iteration finishes (capture,
// process, display, key check) before the next one starts, and the frame
// source, display and background model are released exactly once whichever
// way the loop ends.
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/teslashibe/go-objsize/pkg/capture"
	"github.com/teslashibe/go-objsize/pkg/debug"
	"github.com/teslashibe/go-objsize/pkg/display"
	"github.com/teslashibe/go-objsize/pkg/measure"
	"gocv.io/x/gocv"
)

// ErrAlreadyRan is returned when Run is called a second time.
var ErrAlreadyRan = errors.New("processor: already ran")

// Pipeline turns a frame into contour candidates.
// segment.Segmenter is the production implementation.
type Pipeline interface {
	Process(frame gocv.Mat) ([]measure.Candidate, error)
	Mask() gocv.Mat
	io.Closer
}

// StopReason says why the loop ended.
type StopReason string

const (
	StopNone          StopReason = ""
	StopKey           StopReason = "key"
	StopContext       StopReason = "context"
	StopMaxFrames     StopReason = "max_frames"
	StopCaptureFailed StopReason = "capture_failed"
	StopPipelineError StopReason = "pipeline_error"
)

// Summary describes a finished run.
type Summary struct {
	Frames   uint64          `json:"frames"`
	Measured uint64          `json:"measured"`
	Reason   StopReason      `json:"reason"`
	Elapsed  time.Duration   `json:"elapsed"`
	Sizes    measure.Summary `json:"sizes"`
}

// FPS returns the average loop rate.
func (s Summary) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Processor owns one measuring session.
type Processor struct {
	cfg      Config
	source   capture.Source
	sink     display.Sink
	pipeline Pipeline
	stopper  Stopper

	out       io.Writer
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time

	stats measure.Stats

	ran       bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Processor.
type Option func(*Processor)

// WithStopper replaces the default quit-key stopper.
func WithStopper(s Stopper) Option {
	return func(p *Processor) {
		p.stopper = s
	}
}

// WithOutput sets where the measurement lines are written (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(p *Processor) {
		p.out = w
	}
}

// WithObserver registers an observer for every frame.
func WithObserver(o Observer) Option {
	return func(p *Processor) {
		p.observers = append(p.observers, o)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// New creates a Processor. The processor takes ownership of source, sink and
// pipeline and closes them when Run returns.
func New(cfg Config, source capture.Source, sink display.Sink, pipeline Pipeline, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil || sink == nil || pipeline == nil {
		return nil, fmt.Errorf("processor: source, sink and pipeline are required")
	}

	p := &Processor{
		cfg:      cfg,
		source:   source,
		sink:     sink,
		pipeline: pipeline,
		stopper:  QuitOn(cfg.QuitKey),
		out:      os.Stdout,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the loop configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// Step measures one frame that has already been read. It annotates frame in
// place and writes the measurement lines. It returns nil when no contour
// qualifies.
func (p *Processor) Step(index uint64, frame *gocv.Mat) (*measure.Measurement, error) {
	cands, err := p.pipeline.Process(*frame)
	if err != nil {
		return nil, err
	}

	best := measure.SelectLargest(cands, p.cfg.MinContourArea)
	debug.Log("frame %d: %d contours, selected=%v\n", index, len(cands), best != nil)
	if best == nil {
		return nil, nil
	}

	m := p.cfg.Calibration.Measure(index, p.now(), *best)
	display.Annotate(frame, m, best.Points, p.cfg.Style)

	fmt.Fprintln(p.out, m.PixelLine())
	fmt.Fprintln(p.out, m.SizeLine())

	p.stats.Add(m)
	return &m, nil
}

// Run executes the loop until a stop key, context cancellation, MaxFrames or
// a capture failure. Capture failure is returned as an error wrapping
// capture.ErrCapture; the other stops return nil.
func (p *Processor) Run(ctx context.Context) (sum Summary, err error) {
	if p.ran {
		return Summary{}, ErrAlreadyRan
	}
	p.ran = true

	start := p.now()
	defer func() {
		if cerr := p.release(); cerr != nil && err == nil {
			err = cerr
		}
		sum.Elapsed = p.now().Sub(start)
		sum.Sizes = p.stats.Summary()
		p.logger.Info("measuring loop stopped",
			"reason", sum.Reason,
			"frames", sum.Frames,
			"measured", sum.Measured,
			"fps", fmt.Sprintf("%.1f", sum.FPS()),
			"mean_width_cm", fmt.Sprintf("%.2f", sum.Sizes.MeanWidthCM),
			"mean_height_cm", fmt.Sprintf("%.2f", sum.Sizes.MeanHeightCM),
		)
	}()

	frame := gocv.NewMat()
	defer frame.Close()

	p.logger.Info("measuring loop started",
		"source", p.source.Name(),
		"min_area", p.cfg.MinContourArea,
		"ref_px", p.cfg.Calibration.ReferencePixels,
		"ref_cm", p.cfg.Calibration.ReferenceCM,
	)

	for {
		if ctx.Err() != nil {
			sum.Reason = StopContext
			return sum, nil
		}
		if p.cfg.MaxFrames > 0 && sum.Frames >= p.cfg.MaxFrames {
			sum.Reason = StopMaxFrames
			return sum, nil
		}

		if rerr := p.source.Read(&frame); rerr != nil {
			p.logger.Error("failed to grab frame", "source", p.source.Name(), "frame", sum.Frames, "error", rerr)
			sum.Reason = StopCaptureFailed
			if !errors.Is(rerr, capture.ErrCapture) {
				rerr = &capture.CaptureError{Source: p.source.Name(), Frame: sum.Frames, Err: rerr}
			}
			return sum, rerr
		}
		index := sum.Frames
		sum.Frames++

		m, serr := p.Step(index, &frame)
		if serr != nil {
			sum.Reason = StopPipelineError
			return sum, fmt.Errorf("process frame %d: %w", index, serr)
		}
		if m != nil {
			sum.Measured++
		}

		if err := p.sink.Show(frame); err != nil {
			p.logger.Warn("display failed", "frame", index, "error", err)
		}
		if p.cfg.ShowMask {
			if mv, ok := p.sink.(display.MaskViewer); ok {
				mv.ShowMask(p.pipeline.Mask())
			}
		}

		p.notify(FrameEvent{Index: index, Frame: frame, Measurement: m})

		key := p.sink.PollKey(p.cfg.KeyDelay)
		if p.stopper.ShouldStop(key) {
			sum.Reason = StopKey
			return sum, nil
		}
	}
}

// notify calls every observer. A panicking observer is logged and skipped so
// the dashboard can never take the loop down.
func (p *Processor) notify(ev FrameEvent) {
	for _, o := range p.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Warn("observer panicked", "frame", ev.Index, "panic", r)
				}
			}()
			o.OnFrame(ev)
		}()
	}
}

// release closes the pipeline, sink and source once.
func (p *Processor) release() error {
	p.closeOnce.Do(func() {
		p.closeErr = errors.Join(
			p.pipeline.Close(),
			p.sink.Close(),
			p.source.Close(),
		)
	})
	return p.closeErr
}
