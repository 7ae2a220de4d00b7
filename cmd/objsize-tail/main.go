// objsize-tail: follow the measurements of a running objsize dashboard.
//
// Prints the same two lines objsize writes to stdout for every measurement
// event streamed on /ws/measurements.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-objsize/internal/httpc"
	"github.com/teslashibe/go-objsize/internal/log"
	"github.com/teslashibe/go-objsize/pkg/measure"
	"github.com/teslashibe/go-objsize/pkg/web"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Dashboard host:port")
	backfill := flag.Int("backfill", 0, "Print the last N measurements before following")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tail(ctx, *addr, *backfill); err != nil {
		log.Error("tail stopped", "error", err)
		os.Exit(1)
	}
}

func tail(ctx context.Context, addr string, backfill int) error {
	base := url.URL{Scheme: "http", Host: addr}

	var status web.Status
	if err := httpc.GetJSON(ctx, base.JoinPath("api", "status").String(), &status); err != nil {
		return fmt.Errorf("dashboard status: %w", err)
	}
	log.Info("connected to session", "session_id", status.SessionID, "frames", status.Frames, "measured", status.Measured)

	if backfill > 0 {
		u := base.JoinPath("api", "measurements")
		u.RawQuery = url.Values{"limit": {fmt.Sprint(backfill)}}.Encode()

		var recent []measure.Measurement
		if err := httpc.GetJSON(ctx, u.String(), &recent); err != nil {
			return fmt.Errorf("recent measurements: %w", err)
		}
		for _, m := range recent {
			printMeasurement(m)
		}
	}

	wsURL := url.URL{Scheme: "ws", Host: addr, Path: "/ws/measurements"}
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	// Unblock ReadMessage on shutdown
	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var ev web.MeasurementEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn("bad event", "error", err)
			continue
		}
		if ev.SessionID != status.SessionID {
			log.Debug("event from another session", "session_id", ev.SessionID)
		}
		printMeasurement(ev.Measurement)
	}
}

func printMeasurement(m measure.Measurement) {
	fmt.Println(m.PixelLine())
	fmt.Println(m.SizeLine())
}
