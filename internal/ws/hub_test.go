package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func TestBroadcastReachesClient(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.BroadcastJSON(map[string]any{"type": "capture", "index": 3})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev struct {
		Type  string `json:"type"`
		Index int    `json:"index"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != "capture" || ev.Index != 3 {
		t.Fatalf("event = %+v", ev)
	}
}

func TestBroadcastDropsWhenFull(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// Without Run nothing drains the queue.
	hub := NewHub(logger)
	for i := 0; i < cap(hub.broadcast)+5; i++ {
		hub.BroadcastJSON(i)
	}
	if got := hub.Dropped(); got != 5 {
		t.Fatalf("dropped = %d, want 5", got)
	}
}
