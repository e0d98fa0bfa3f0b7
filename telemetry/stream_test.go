package telemetry

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func readStreamMessage(t *testing.T, conn *websocket.Conn) StreamMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg StreamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return msg
}

func TestStreamPublishesWindows(t *testing.T) {
	s := NewStream("run-1")
	go s.Run()
	defer s.Stop()

	server := httptest.NewServer(s)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := readStreamMessage(t, conn)
	if hello.Type != MessageHello || hello.RunID != "run-1" {
		t.Fatalf("first message = %+v, want hello for run-1", hello)
	}

	if err := s.PublishWindow(WindowStats{WindowEndTick: 60, Active: 123, Coherence: 0.5}); err != nil {
		t.Fatal(err)
	}

	msg := readStreamMessage(t, conn)
	if msg.Type != MessageWindow {
		t.Fatalf("type = %q, want %q", msg.Type, MessageWindow)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T, want object", msg.Data)
	}
	if data["active"] != float64(123) || data["window_end"] != float64(60) {
		t.Errorf("data = %v", data)
	}
	if s.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", s.ClientCount())
	}
}

func TestStreamStopClosesClients(t *testing.T) {
	s := NewStream("")
	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	server := httptest.NewServer(s)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readStreamMessage(t, conn)

	s.Stop()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after Stop = %v, want normal close frame", err)
	}

	// Publishing after Stop must not block
	if err := s.PublishWindow(WindowStats{}); err != nil {
		t.Error(err)
	}
}

func TestNilStreamPublish(t *testing.T) {
	var s *Stream
	if err := s.PublishWindow(WindowStats{}); err != nil {
		t.Errorf("nil stream publish = %v", err)
	}
}
