package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-objsize/pkg/hub"
	"github.com/teslashibe/go-objsize/pkg/measure"
)

// handleStatus returns the session state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleConfig returns the effective pipeline settings
func (s *Server) handleConfig(c *fiber.Ctx) error {
	s.mu.RLock()
	settings := s.settings
	s.mu.RUnlock()

	if settings == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "settings not published",
		})
	}
	return c.JSON(settings)
}

// handleMeasurements returns recent measurements, oldest first.
// ?limit=N returns only the newest N.
func (s *Server) handleMeasurements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}
	return c.JSON(s.Recent(limit))
}

// Status returns a snapshot of the session.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		SessionID: s.sessionID,
		Started:   s.started,
		Frames:    s.frames,
		Measured:  s.measured,
		Sizes:     s.stats.Summary(),
		Streams:   []hub.Stats{s.cameraHub.Stats(), s.measurementHub.Stats()},
	}
	if elapsed := s.now().Sub(s.started).Seconds(); elapsed > 0 {
		st.FPS = float64(s.frames) / elapsed
	}
	if n := len(s.recent); n > 0 {
		last := s.recent[n-1]
		st.LastMeasurement = &last
	}
	return st
}

// Recent returns up to limit of the newest measurements (all when limit is 0).
func (s *Server) Recent(limit int) []measure.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if limit > 0 && limit < len(s.recent) {
		start = len(s.recent) - limit
	}
	out := make([]measure.Measurement, len(s.recent)-start)
	copy(out, s.recent[start:])
	return out
}
