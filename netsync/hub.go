package netsync

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/plus3/voxelvolution/message"
	"github.com/plus3/voxelvolution/metrics"
)

// Hub relays every well formed message it receives from one peer to all other peers.
type Hub struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu    sync.RWMutex
	peers map[uuid.UUID]*peer
}

type peer struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub accepting connections from any origin.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  message.MaxLength,
			WriteBufferSize: message.MaxLength,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With().Str("module", "hub").Logger(),
		peers:  make(map[uuid.UUID]*peer),
	}
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer metrics.EmitDuration(time.Now(), "hub.session")
	conn.SetReadLimit(message.MaxLength)

	p := &peer{id: uuid.New(), conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.peers[p.id] = p
	h.mu.Unlock()
	h.logger.Info().Str("peer", p.id.String()).Str("remote", r.RemoteAddr).Msg("peer connected")

	done := make(chan struct{})
	go h.writePump(p, done)
	h.readPump(p)

	h.mu.Lock()
	delete(h.peers, p.id)
	h.mu.Unlock()
	close(done)
	_ = conn.Close()
	h.logger.Info().Str("peer", p.id.String()).Msg("peer disconnected")
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		_ = p.conn.Close()
	}
}

func (h *Hub) readPump(p *peer) {
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPingHandler(func(data string) error {
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return p.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn().Err(err).Str("peer", p.id.String()).Msg("read failed")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if _, err := message.DecodeHeader(data); err != nil {
			h.logger.Warn().Err(err).Str("peer", p.id.String()).Msg("discarding malformed message")
			continue
		}
		h.broadcast(p, data)
	}
}

func (h *Hub) broadcast(from *peer, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, p := range h.peers {
		if id == from.id {
			continue
		}
		select {
		case p.send <- data:
		default:
			h.logger.Warn().Str("peer", id.String()).Msg("peer send buffer full, dropping message")
		}
	}
}

func (h *Hub) writePump(p *peer, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case data := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.logger.Warn().Err(err).Str("peer", p.id.String()).Msg("write failed")
				_ = p.conn.Close()
				return
			}
		}
	}
}
