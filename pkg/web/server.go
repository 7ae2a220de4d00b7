// Package web provides an optional read-only dashboard for a measuring
// session: live annotated frames, measurement events and session status.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/teslashibe/go-objsize/pkg/hub"
	"github.com/teslashibe/go-objsize/pkg/measure"
)

//go:embed static
var staticFS embed.FS

// Config holds dashboard settings.
type Config struct {
	Addr        string // Listen address, e.g. ":8080"
	FrameEvery  int    // Stream every Nth frame to camera viewers
	JPEGQuality int    // 1-100
	History     int    // Measurements kept for /api/measurements
}

// DefaultConfig returns dashboard defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		FrameEvery:  2,
		JPEGQuality: 75,
		History:     200,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must be set")
	}
	if c.FrameEvery < 1 {
		return fmt.Errorf("frame_every must be at least 1, got %d", c.FrameEvery)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.History < 1 {
		return fmt.Errorf("history must be at least 1, got %d", c.History)
	}
	return nil
}

// Status is the session state served at /api/status.
type Status struct {
	SessionID       string               `json:"session_id"`
	Started         time.Time            `json:"started"`
	Frames          uint64               `json:"frames"`
	Measured        uint64               `json:"measured"`
	FPS             float64              `json:"fps"`
	LastMeasurement *measure.Measurement `json:"last_measurement,omitempty"`
	Sizes           measure.Summary      `json:"sizes"`
	Streams         []hub.Stats          `json:"streams"`
}

// MeasurementEvent is pushed on /ws/measurements.
type MeasurementEvent struct {
	SessionID string `json:"session_id"`
	measure.Measurement
}

// Server is the dashboard.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	sessionID string
	started   time.Time
	now       func() time.Time

	mu       sync.RWMutex
	frames   uint64
	measured uint64
	recent   []measure.Measurement
	stats    measure.Stats
	settings any

	cameraHub      *hub.Hub
	measurementHub *hub.Hub
}

// NewServer creates a dashboard with a fresh session id.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dashboard config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:            cfg,
		logger:         logger.With("component", "web"),
		sessionID:      uuid.New().String(),
		now:            time.Now,
		recent:         make([]measure.Measurement, 0, cfg.History),
		cameraHub:      hub.New("camera", hub.WithReplayLast(), hub.WithLogger(logger)),
		measurementHub: hub.New("measurements", hub.WithLogger(logger)),
	}
	s.started = s.now()

	app := fiber.New(fiber.Config{
		AppName:               "objsize dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/config", s.handleConfig)
	api.Get("/measurements", s.handleMeasurements)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))
	app.Get("/ws/measurements", websocket.New(s.serveHub(s.measurementHub)))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(staticFS),
		PathPrefix: "static",
		Index:      "index.html",
	}))

	s.app = app
	return s, nil
}

// SessionID returns the id attached to every event of this session.
func (s *Server) SessionID() string {
	return s.sessionID
}

// SetSettings stores the effective pipeline configuration served at /api/config.
func (s *Server) SetSettings(v any) {
	s.mu.Lock()
	s.settings = v
	s.mu.Unlock()
}

// Start runs the hubs and the HTTP listener until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.cameraHub.Run(ctx)
	go s.measurementHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("dashboard shutdown", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "addr", s.cfg.Addr, "session_id", s.sessionID)
	if err := s.app.Listen(s.cfg.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	return nil
}

// StartAsync starts the dashboard in a goroutine and logs listener errors.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		client := hub.NewClient(h, conn)
		if client == nil {
			conn.Close()
			return
		}
		client.Serve()
	}
}
