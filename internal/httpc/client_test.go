package httpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"session_id":"abc","frames":12}`))
		case "/bad":
			w.Write([]byte(`{not json`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var got struct {
		SessionID string `json:"session_id"`
		Frames    int    `json:"frames"`
	}
	if err := GetJSON(context.Background(), srv.URL+"/ok", &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.SessionID != "abc" || got.Frames != 12 {
		t.Errorf("got %+v", got)
	}

	if err := GetJSON(context.Background(), srv.URL+"/bad", &got); err == nil {
		t.Error("expected decode error")
	}

	err := GetJSON(context.Background(), srv.URL+"/missing", &got)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}
}

func TestGetJSON_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var v map[string]any
	if err := GetJSON(ctx, srv.URL, &v); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
