package web

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-objsize/pkg/measure"
	"github.com/teslashibe/go-objsize/pkg/processor"
	"gocv.io/x/gocv"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func measurement(frame uint64, w, h int) *measure.Measurement {
	m := measure.DefaultCalibration().Measure(frame, time.Unix(0, 0), measure.Candidate{
		Area: float64(w * h),
		Rect: image.Rect(0, 0, w, h),
	})
	return &m
}

func feed(s *Server, events ...processor.FrameEvent) {
	for _, ev := range events {
		ev.Frame = gocv.NewMat()
		s.OnFrame(ev)
		ev.Frame.Close()
	}
}

func getJSON(t *testing.T, s *Server, path string, v any) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == 200 {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}

	bad := []Config{
		{Addr: "", FrameEvery: 1, JPEGQuality: 80, History: 10},
		{Addr: ":1", FrameEvery: 0, JPEGQuality: 80, History: 10},
		{Addr: ":1", FrameEvery: 1, JPEGQuality: 101, History: 10},
		{Addr: ":1", FrameEvery: 1, JPEGQuality: 80, History: 0},
	}
	for _, c := range bad {
		if _, err := NewServer(c, nil); err == nil {
			t.Errorf("NewServer(%+v) should fail", c)
		}
	}
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	feed(s,
		processor.FrameEvent{Index: 0},
		processor.FrameEvent{Index: 1, Measurement: measurement(1, 75, 150)},
		processor.FrameEvent{Index: 2},
	)

	var st Status
	if code := getJSON(t, s, "/api/status", &st); code != 200 {
		t.Fatalf("status code %d", code)
	}
	if st.SessionID != s.SessionID() || st.SessionID == "" {
		t.Errorf("session id %q, want %q", st.SessionID, s.SessionID())
	}
	if st.Frames != 3 || st.Measured != 1 {
		t.Errorf("frames/measured = %d/%d, want 3/1", st.Frames, st.Measured)
	}
	if st.LastMeasurement == nil || st.LastMeasurement.Size.HeightCM != 30 {
		t.Errorf("last measurement = %+v", st.LastMeasurement)
	}
	if len(st.Streams) != 2 {
		t.Errorf("streams = %+v, want camera and measurements", st.Streams)
	}
}

func TestConfigEndpoint(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	if code := getJSON(t, s, "/api/config", nil); code != 404 {
		t.Errorf("unpublished config code = %d, want 404", code)
	}

	s.SetSettings(map[string]any{"min_contour_area": 500})
	var got map[string]any
	if code := getJSON(t, s, "/api/config", &got); code != 200 {
		t.Fatalf("config code = %d", code)
	}
	if got["min_contour_area"] != 500.0 {
		t.Errorf("config = %v", got)
	}
}

func TestMeasurements_RingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History = 3
	s := newTestServer(t, cfg)

	for i := uint64(0); i < 5; i++ {
		feed(s, processor.FrameEvent{Index: i, Measurement: measurement(i, 75, 75)})
	}

	var all []measure.Measurement
	getJSON(t, s, "/api/measurements", &all)
	if len(all) != 3 || all[0].Frame != 2 || all[2].Frame != 4 {
		t.Errorf("measurements = %+v, want frames 2..4", all)
	}

	var newest []measure.Measurement
	getJSON(t, s, "/api/measurements?limit=1", &newest)
	if len(newest) != 1 || newest[0].Frame != 4 {
		t.Errorf("limit=1 = %+v, want frame 4", newest)
	}

	if code := getJSON(t, s, "/api/measurements?limit=-2", nil); code != 400 {
		t.Errorf("negative limit code = %d, want 400", code)
	}
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 || !strings.Contains(string(body), "Webcam Object Size Detection") {
		t.Errorf("index: code %d body %q", resp.StatusCode, body)
	}
}

func TestWebSocket_UpgradeRequired(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	resp, err := s.App().Test(httptest.NewRequest("GET", "/ws/measurements", nil))
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != 426 {
		t.Errorf("plain GET on websocket route = %d, want 426", resp.StatusCode)
	}
}

func TestWebSocket_MeasurementStream(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = ":18093"
	s := newTestServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartAsync(ctx)
	time.Sleep(100 * time.Millisecond)

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18093/ws/measurements", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	// Wait for the hub to register the client
	time.Sleep(50 * time.Millisecond)

	feed(s, processor.FrameEvent{Index: 9, Measurement: measurement(9, 150, 75)})

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	var ev MeasurementEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if ev.SessionID != s.SessionID() {
		t.Errorf("session id %q, want %q", ev.SessionID, s.SessionID())
	}
	if ev.Frame != 9 || ev.Size.WidthCM != 30 || ev.Size.HeightCM != 15 {
		t.Errorf("event = %+v", ev)
	}
}

func TestEncodeJPEG(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 128, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	data, err := EncodeJPEG(frame, 80)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("not a JPEG: % x", data[:min(4, len(data))])
	}
}
