package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/skytrace/missionmap/internal/channel"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/internal/render"
	"github.com/skytrace/missionmap/internal/viewport"
	"github.com/skytrace/missionmap/pkg/core"
)

const (
	clientBufferSize = 256
	writeWait        = 10 * time.Second
)

// Message types pushed to websocket clients.
const (
	MessageSnapshot = "snapshot"
	MessageCreated  = "mission_created"
	MessageUpdated  = "mission_updated"
	MessageRemoved  = "mission_removed"
)

// Message is one websocket push. Every message carries the framing and
// markers recomputed after the change.
type Message struct {
	Type     string                  `json:"type"`
	Mission  *render.MissionSummary  `json:"mission,omitempty"`
	Missions []render.MissionSummary `json:"missions,omitempty"`
	Framing  core.Framing            `json:"framing"`
	Markers  []core.Marker           `json:"markers"`
}

type hubClient struct {
	conn *ws.Conn
	send *channel.Buffered[[]byte]
}

// Hub fans registry changes out to websocket clients. A client whose
// buffer is full is disconnected.
type Hub struct {
	registry *registry.Registry
	fitter   *viewport.Fitter
	logger   *slog.Logger
	upgrader ws.Upgrader
	sub      *registry.Subscription

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

// NewHub creates a hub subscribed to reg. Changes queue until Run is
// called.
func NewHub(reg *registry.Registry, fitter *viewport.Fitter, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry: reg,
		fitter:   fitter,
		logger:   logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sub:     reg.Subscribe(),
		clients: make(map[*hubClient]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run forwards registry changes until ctx is done, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) error {
	sub := h.sub
	defer func() {
		sub.Unsubscribe()
		for range sub.Receive() {
		}
	}()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-sub.Receive():
			if !ok {
				return nil
			}
			h.broadcast(h.changeMessage(change))
		}
	}
}

func (h *Hub) changeMessage(c registry.Change) Message {
	summary := render.Summarize(c.Mission)
	msg := h.message(MessageUpdated)
	msg.Mission = &summary
	switch c.Kind {
	case registry.ChangeCreated:
		msg.Type = MessageCreated
	case registry.ChangeRemoved:
		msg.Type = MessageRemoved
	}
	return msg
}

func (h *Hub) message(kind string) Message {
	missions := h.registry.List()
	return Message{
		Type:    kind,
		Framing: h.fitter.FitMissions(missions),
		Markers: render.Markers(missions),
	}
}

func (h *Hub) snapshot() Message {
	msg := h.message(MessageSnapshot)
	msg.Missions = render.SummarizeAll(h.registry.List()).Missions
	return msg
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal websocket message", "error", err, "type", msg.Type)
		return
	}

	var slow []*hubClient
	h.mu.RLock()
	for c := range h.clients {
		if !c.send.TrySend(data) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
		h.remove(c)
	}
}

// ServeHTTP upgrades the request and registers the client. The first
// message is a snapshot of the registry.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade websocket", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := &hubClient{conn: conn, send: channel.NewBuffered[[]byte](clientBufferSize)}

	// snapshot and registration share the lock so no change broadcast in
	// between is lost
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteControl(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseGoingAway, ""), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	if data, err := json.Marshal(h.snapshot()); err == nil {
		c.send.TrySend(data)
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("Websocket client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// remove unregisters c and closes its buffer. Safe to call more than once.
func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.send.Close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.send.Close()
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	defer c.conn.Close()
	for data := range c.send.Receive() {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
			h.logger.Debug("Websocket write error", "error", err)
			h.remove(c)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
}

// readLoop discards client messages and unregisters on disconnect.
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				h.logger.Debug("Websocket read error", "error", err)
			}
			return
		}
	}
}
