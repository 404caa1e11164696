package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/bissquit/statusdeck/internal/pkg/metrics"
	"github.com/gorilla/websocket"
)

// Config holds hub tuning parameters.
type Config struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Hub maintains websocket subscriptions per audience and fans events out to
// them. It is a capability passed explicitly to the components that publish;
// there is no process-wide handle.
type Hub struct {
	cfg Config

	mu    sync.RWMutex
	rooms map[Audience]map[*subscriber]struct{}
}

type subscriber struct {
	hub      *Hub
	audience Audience
	conn     *websocket.Conn
	send     chan []byte
	closed   sync.Once
}

// NewHub creates an empty hub.
func NewHub(cfg Config) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 32
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Hub{
		cfg:   cfg,
		rooms: make(map[Audience]map[*subscriber]struct{}),
	}
}

// Publish sends an event to every subscriber of the audience. It never
// blocks: a subscriber whose buffer is full has the message dropped, and the
// drop is logged and counted.
func (h *Hub) Publish(audience Audience, event string, payload interface{}) {
	data, err := json.Marshal(Message{Event: event, Payload: payload})
	if err != nil {
		slog.Error("failed to encode fanout message", "audience", audience.String(), "event", event, "error", err)
		metrics.RealtimeEventsTotal.WithLabelValues(audience.Kind, event, "encode_error").Inc()
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[audience] {
		select {
		case sub.send <- data:
			metrics.RealtimeEventsTotal.WithLabelValues(audience.Kind, event, "queued").Inc()
		default:
			slog.Warn("slow subscriber, dropping message",
				"audience", audience.String(),
				"event", event,
			)
			metrics.RealtimeEventsTotal.WithLabelValues(audience.Kind, event, "dropped").Inc()
		}
	}
}

// Attach registers a websocket connection as a subscriber of the audience
// and services it until the connection closes.
func (h *Hub) Attach(audience Audience, conn *websocket.Conn) {
	sub := &subscriber{
		hub:      h,
		audience: audience,
		conn:     conn,
		send:     make(chan []byte, h.cfg.SendBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[audience]
	if !ok {
		room = make(map[*subscriber]struct{})
		h.rooms[audience] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeConnections.WithLabelValues(audience.Kind).Inc()
	slog.Debug("subscriber attached", "audience", audience.String())

	go sub.writePump(h.cfg.WriteTimeout, h.cfg.PingInterval)
	go sub.readPump()
}

// SubscriberCount returns the number of open subscriptions for an audience.
func (h *Hub) SubscriberCount(audience Audience) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[audience])
}

func (h *Hub) detach(sub *subscriber) {
	h.mu.Lock()
	room, ok := h.rooms[sub.audience]
	if ok {
		if _, present := room[sub]; present {
			delete(room, sub)
			if len(room) == 0 {
				delete(h.rooms, sub.audience)
			}
			metrics.RealtimeConnections.WithLabelValues(sub.audience.Kind).Dec()
		}
	}
	h.mu.Unlock()

	sub.closed.Do(func() {
		close(sub.send)
		_ = sub.conn.Close()
	})
}

// writePump drains the send buffer to the connection and keeps it alive with
// pings. Any write error tears the subscription down.
func (s *subscriber) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.hub.detach(s)

	for {
		select {
		case data, ok := <-s.send:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("subscriber write failed", "audience", s.audience.String(), "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; subscribers are listen-only. It exists to
// observe connection close and pong replies.
func (s *subscriber) readPump() {
	defer s.hub.detach(s)

	s.conn.SetReadLimit(512)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("subscriber read failed", "audience", s.audience.String(), "error", err)
			}
			return
		}
	}
}
