// objsize: estimate the physical size of a moving object seen by a webcam.
//
// Learns the background, finds the largest moving contour in each frame,
// draws its box and prints its size in centimeters. Press q to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-objsize/internal/config"
	"github.com/teslashibe/go-objsize/internal/log"
	"github.com/teslashibe/go-objsize/pkg/capture"
	"github.com/teslashibe/go-objsize/pkg/debug"
	"github.com/teslashibe/go-objsize/pkg/display"
	"github.com/teslashibe/go-objsize/pkg/measure"
	"github.com/teslashibe/go-objsize/pkg/processor"
	"github.com/teslashibe/go-objsize/pkg/segment"
	"github.com/teslashibe/go-objsize/pkg/web"
)

// options is everything the command line can change.
type options struct {
	capture  capture.Config
	segment  segment.Config
	loop     processor.Config
	webAddr  string
	headless bool
	logLevel string
}

// settings is what /api/config reports.
type settings struct {
	Capture   capture.Config   `json:"capture"`
	Segment   segment.Config   `json:"segment"`
	Processor processor.Config `json:"processor"`
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	log.Init(opts.logLevel)
	logger := log.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := capture.NewSource(opts.capture, logger)
	if err != nil {
		log.Error("failed to open camera", "device", opts.capture.Device, "error", err)
		return 1
	}

	seg, err := segment.New(opts.segment, logger)
	if err != nil {
		src.Close()
		log.Error("failed to create segmenter", "error", err)
		return 1
	}

	var sink display.Sink
	if opts.headless {
		sink = display.NewHeadlessSink(display.WithPacing())
	} else {
		sink = display.NewWindowSink(display.DefaultWindowTitle, opts.loop.ShowMask, logger)
	}

	procOpts := []processor.Option{processor.WithLogger(logger)}

	if opts.webAddr != "" {
		webCfg := web.DefaultConfig()
		webCfg.Addr = opts.webAddr
		dash, err := web.NewServer(webCfg, logger)
		if err != nil {
			seg.Close()
			sink.Close()
			src.Close()
			log.Error("failed to create dashboard", "error", err)
			return 1
		}
		dash.SetSettings(settings{
			Capture:   opts.capture,
			Segment:   opts.segment,
			Processor: opts.loop,
		})
		dash.StartAsync(ctx)
		procOpts = append(procOpts, processor.WithObserver(dash))
		log.Info("dashboard enabled", "url", "http://localhost"+opts.webAddr, "session_id", dash.SessionID())
	}

	proc, err := processor.New(opts.loop, src, sink, seg, procOpts...)
	if err != nil {
		seg.Close()
		sink.Close()
		src.Close()
		log.Error("failed to create processor", "error", err)
		return 1
	}

	sum, err := proc.Run(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrCapture) {
			log.Error("failed to grab frame", "frames", sum.Frames, "error", err)
		} else {
			log.Error("measuring loop failed", "reason", sum.Reason, "error", err)
		}
		return 1
	}

	if sum.Measured > 0 {
		fmt.Fprintf(os.Stderr, "\nMeasured %d of %d frames. Mean size: %.2f x %.2f cm (±%.2f x %.2f)\n",
			sum.Measured, sum.Frames,
			sum.Sizes.MeanWidthCM, sum.Sizes.MeanHeightCM,
			sum.Sizes.StdDevWidthCM, sum.Sizes.StdDevHeightCM)
	}
	return 0
}

// parseFlags builds options from defaults, then the environment, then flags.
func parseFlags() options {
	opts := options{
		capture: capture.DefaultConfig(),
		segment: segment.DefaultConfig(),
		loop:    processor.DefaultConfig(),
	}

	// Environment
	opts.capture.Device = config.Camera()
	opts.loop.Calibration = measure.Calibration{
		ReferencePixels: config.Float(config.EnvRefPx, opts.loop.Calibration.ReferencePixels),
		ReferenceCM:     config.Float(config.EnvRefCM, opts.loop.Calibration.ReferenceCM),
	}
	opts.loop.MinContourArea = config.Float(config.EnvMinArea, opts.loop.MinContourArea)

	backend := string(opts.capture.Backend)
	var preset string

	flag.StringVar(&opts.capture.Device, "camera", opts.capture.Device, "Camera index or video path/URL (env "+config.EnvCamera+")")
	flag.StringVar(&backend, "backend", backend, "Frame source: auto, device, file or mock")
	flag.StringVar(&preset, "preset", "", "Camera mode: "+strings.Join(capture.PresetNames(), ", "))
	flag.IntVar(&opts.capture.Width, "width", 0, "Requested frame width (0 = driver default)")
	flag.IntVar(&opts.capture.Height, "height", 0, "Requested frame height (0 = driver default)")
	flag.Float64Var(&opts.capture.FPS, "fps", 0, "Requested frame rate (0 = driver default)")
	flag.IntVar(&opts.capture.MockFrames, "mock-frames", opts.capture.MockFrames, "Frames served by the mock backend")

	flag.Float64Var(&opts.loop.Calibration.ReferencePixels, "ref-px", opts.loop.Calibration.ReferencePixels, "Reference object width in pixels (env "+config.EnvRefPx+")")
	flag.Float64Var(&opts.loop.Calibration.ReferenceCM, "ref-cm", opts.loop.Calibration.ReferenceCM, "Reference object width in cm (env "+config.EnvRefCM+")")
	flag.Float64Var(&opts.loop.MinContourArea, "min-area", opts.loop.MinContourArea, "Minimum contour area in pixels (env "+config.EnvMinArea+")")
	flag.Uint64Var(&opts.loop.MaxFrames, "max-frames", 0, "Stop after this many frames (0 = unlimited)")

	flag.BoolVar(&opts.headless, "headless", false, "Run without a window")
	flag.StringVar(&opts.webAddr, "web", config.WebAddr(), "Serve the dashboard on this address, e.g. :8080 (env "+config.EnvWebAddr+")")
	flag.StringVar(&opts.logLevel, "log-level", config.LogLevel(), "Log level: debug, info, warn, error (env "+config.EnvLogLevel+")")
	flag.BoolVar(&debug.Enabled, "debug", false, "Print per-frame pipeline diagnostics")
	flag.BoolVar(&debug.Masks, "debug-masks", false, "Show the foreground mask in a second window")

	flag.Parse()

	opts.capture.Backend = capture.Backend(backend)
	if preset != "" {
		applyPreset(&opts.capture, preset)
	}
	opts.loop.ShowMask = debug.Masks && !opts.headless
	if debug.Enabled && opts.logLevel == "info" {
		opts.logLevel = "debug"
	}
	return opts
}

// applyPreset sets the preset's geometry, keeping any of width, height, fps
// or backend that were given explicitly.
func applyPreset(cfg *capture.Config, name string) {
	explicit := *cfg
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	withPreset, err := cfg.ApplyPreset(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "objsize: %v\n", err)
		os.Exit(2)
	}
	if set["width"] {
		withPreset.Width = explicit.Width
	}
	if set["height"] {
		withPreset.Height = explicit.Height
	}
	if set["fps"] {
		withPreset.FPS = explicit.FPS
	}
	if set["backend"] {
		withPreset.Backend = explicit.Backend
	}
	*cfg = withPreset
}
