package web

import (
	"github.com/teslashibe/go-objsize/pkg/processor"
	"gocv.io/x/gocv"
)

// OnFrame implements processor.Observer. It runs on the frame loop, so it
// only copies data out and hands it to the hubs without blocking.
func (s *Server) OnFrame(ev processor.FrameEvent) {
	s.mu.Lock()
	s.frames++
	if ev.Measurement != nil {
		s.measured++
		s.stats.Add(*ev.Measurement)
		if len(s.recent) == s.cfg.History {
			copy(s.recent, s.recent[1:])
			s.recent = s.recent[:len(s.recent)-1]
		}
		s.recent = append(s.recent, *ev.Measurement)
	}
	s.mu.Unlock()

	if ev.Measurement != nil {
		if err := s.measurementHub.BroadcastJSON(MeasurementEvent{
			SessionID:   s.sessionID,
			Measurement: *ev.Measurement,
		}); err != nil {
			s.logger.Warn("encode measurement", "error", err)
		}
	}

	if s.cameraHub.ClientCount() == 0 || ev.Index%uint64(s.cfg.FrameEvery) != 0 || ev.Frame.Empty() {
		return
	}
	data, err := EncodeJPEG(ev.Frame, s.cfg.JPEGQuality)
	if err != nil {
		s.logger.Warn("encode frame", "frame", ev.Index, "error", err)
		return
	}
	s.cameraHub.BroadcastBinary(data)
}

// EncodeJPEG compresses frame and returns a Go-owned copy of the bytes.
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
