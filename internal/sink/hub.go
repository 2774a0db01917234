package sink

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/segmentform/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Messages buffered per watcher before it is dropped
	sendBuffer = 16
)

// watcher is one websocket client of the live feed
type watcher struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

// Hub fans received records out to websocket watchers.
type Hub struct {
	mu       sync.Mutex
	watchers map[*watcher]struct{}
	closed   bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{watchers: make(map[*watcher]struct{})}
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Broadcast queues r for every watcher. Watchers whose buffer is full are
// disconnected rather than blocking the submission path.
func (h *Hub) Broadcast(r Record) {
	data, err := json.Marshal(r)
	if err != nil {
		logging.Error("Failed to encode record for watchers", zap.String("id", r.ID), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for w := range h.watchers {
		select {
		case w.send <- data:
		default:
			logging.Warn("Dropping slow watcher", zap.String("remote_addr", w.addr))
			h.removeLocked(w)
		}
	}
}

// Serve registers conn and pumps records to it until either side closes.
func (h *Hub) Serve(conn *websocket.Conn) {
	w := &watcher{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		addr: conn.RemoteAddr().String(),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.watchers[w] = struct{}{}
	h.mu.Unlock()

	logging.LogConnection(w.addr, "watcher_connected")

	go h.writePump(w)
	h.readPump(w)
}

// Close disconnects all watchers and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for w := range h.watchers {
		h.removeLocked(w)
	}
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(w)
}

// removeLocked closes w's send channel exactly once. Caller holds h.mu.
func (h *Hub) removeLocked(w *watcher) {
	if _, ok := h.watchers[w]; !ok {
		return
	}
	delete(h.watchers, w)
	close(w.send)
}

// readPump discards inbound messages and handles pong deadlines.
func (h *Hub) readPump(w *watcher) {
	defer func() {
		h.remove(w)
		_ = w.conn.Close()
		logging.LogConnection(w.addr, "watcher_disconnected")
	}()

	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Watcher read error", zap.String("remote_addr", w.addr), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
	}()

	for {
		select {
		case data, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
