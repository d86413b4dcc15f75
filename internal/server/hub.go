package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dotcommander/pai/internal/models"
)

const (
	messageSnapshot = "snapshot"
	messageEvent    = "event"

	clientSendBuffer = 64
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = 30 * time.Second
)

// wsMessage is one frame of the live stream.
type wsMessage struct {
	Type   string                 `json:"type"`
	Event  *models.ArchivedEvent  `json:"event,omitempty"`
	Events []models.ArchivedEvent `json:"events,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served to local browsers on arbitrary ports.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans event frames out to connected clients. Each client has one writer
// goroutine; a client whose buffer is full misses frames instead of blocking.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	gauge   prometheus.Gauge
}

func newHub(gauge prometheus.Gauge) *hub {
	return &hub{clients: make(map[*wsClient]struct{}), gauge: gauge}
}

func (h *hub) add(c *wsClient, hello []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	c.send <- hello
	h.gauge.Set(float64(len(h.clients)))
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.gauge.Set(float64(len(h.clients)))
}

func (h *hub) broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Default().Warn("encode websocket frame failed", "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.gauge.Set(0)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Default().Warn("websocket upgrade failed", "error", err)
		return
	}

	hello, err := json.Marshal(wsMessage{Type: messageSnapshot, Events: s.recent.Newest(defaultEventsLimit)})
	if err != nil {
		_ = conn.Close()
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	s.hub.add(c, hello)
	go c.writeLoop()
	c.readLoop()
	s.hub.remove(c)
}

// readLoop drains client frames until the connection drops.
func (c *wsClient) readLoop() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
