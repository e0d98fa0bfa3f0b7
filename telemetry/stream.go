package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Peers only send control frames.
	maxMessageSize = 512

	sendBufferSize = 64
)

// Message types sent on the stream.
const (
	MessageWindow = "window"
	MessageHello  = "hello"
)

// StreamMessage is the envelope for every stream message.
type StreamMessage struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from anywhere
	CheckOrigin: func(r *http.Request) bool { return true },
}

type streamClient struct {
	stream *Stream
	conn   *websocket.Conn
	send   chan []byte
}

// Stream broadcasts window stats as JSON to websocket clients. Publishing
// never blocks the simulation: slow clients are dropped.
type Stream struct {
	runID string

	clients    map[*streamClient]bool
	broadcast  chan []byte
	register   chan *streamClient
	unregister chan *streamClient
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// NewStream creates a stream hub. Call Run before serving clients.
func NewStream(runID string) *Stream {
	return &Stream{
		runID:      runID,
		clients:    make(map[*streamClient]bool),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. It returns after Stop.
func (s *Stream) Run() {
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			for c := range s.clients {
				close(c.send)
				delete(s.clients, c)
			}
			s.mu.Unlock()
			return

		case c := <-s.register:
			s.mu.Lock()
			s.clients[c] = true
			n := len(s.clients)
			s.mu.Unlock()
			slog.Info("stream client connected", "clients", n)

		case c := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}
			n := len(s.clients)
			s.mu.Unlock()
			slog.Info("stream client disconnected", "clients", n)

		case msg := <-s.broadcast:
			s.mu.Lock()
			for c := range s.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(s.clients, c)
					slog.Warn("stream client too slow, dropped")
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop shuts the hub down and closes every client. Safe to call twice.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// ClientCount returns the number of connected clients.
func (s *Stream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// PublishWindow queues a window for every client. A nil Stream is a no-op.
func (s *Stream) PublishWindow(stats WindowStats) error {
	if s == nil {
		return nil
	}
	return s.publish(MessageWindow, stats)
}

func (s *Stream) publish(typ string, data any) error {
	msg, err := s.encode(typ, data)
	if err != nil {
		return err
	}
	select {
	case s.broadcast <- msg:
	case <-s.done:
	default:
		// Hub is behind; drop rather than stall the tick
	}
	return nil
}

func (s *Stream) encode(typ string, data any) ([]byte, error) {
	return json.Marshal(StreamMessage{
		Type:      typ,
		RunID:     s.runID,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ServeHTTP upgrades the request and attaches the client to the hub.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stream upgrade failed", "error", err)
		return
	}

	c := &streamClient{stream: s, conn: conn, send: make(chan []byte, sendBufferSize)}
	if hello, err := s.encode(MessageHello, nil); err == nil {
		c.send <- hello
	}

	select {
	case s.register <- c:
	case <-s.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ListenAndServe serves the stream at addr until ctx is cancelled.
func (s *Stream) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/stream", s)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("stream listening", "addr", addr, "path", "/stream")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// readPump drains control frames so pongs are seen; data from peers is ignored.
func (c *streamClient) readPump() {
	defer func() {
		select {
		case c.stream.unregister <- c:
		case <-c.stream.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("stream read error", "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages and keepalive pings. One message per frame.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
