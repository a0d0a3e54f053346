package ws_watchlist

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/humanbelnik/cinematheque/internal/model"
	"github.com/rs/zerolog"
)

const (
	EventState  = "STATE"
	EventNotice = "NOTICE"

	defaultSendBuffer = 16
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type SnapshotSource interface {
	Snapshot() model.Snapshot
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes every state change and notice to all connected clients.
// A client that cannot keep up is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool

	source     SnapshotSource
	upgrader   websocket.Upgrader
	sendBuffer int
	logger     zerolog.Logger
}

type Option func(*Hub)

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		h.sendBuffer = n
	}
}

func New(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		sendBuffer: defaultSendBuffer,
		logger:     zerolog.Nop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bind sets where new connections take their first snapshot from.
func (h *Hub) Bind(source SnapshotSource) {
	h.mu.Lock()
	h.source = source
	h.mu.Unlock()
}

func (h *Hub) OnStateChange(s model.Snapshot) {
	h.broadcast(Event{Type: EventState, Payload: s})
}

func (h *Hub) OnNotice(n model.Notice) {
	h.broadcast(Event{Type: EventNotice, Payload: n})
}

func (h *Hub) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", h.serve)
}

func (h *Hub) ClientsCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, max(h.sendBuffer, 1))}
	h.registerClient(client)

	h.mu.Lock()
	source := h.source
	h.mu.Unlock()
	if source != nil {
		h.sendTo(client, Event{Type: EventState, Payload: source.Snapshot()})
	}

	go h.writeLoop(client)
	h.readLoop(client)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Int("clients", total).Msg("client registered")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Info().Int("clients", len(h.clients)).Msg("client unregistered")
	}
}

func (h *Hub) broadcast(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.deliverLocked(client, msg)
	}
}

func (h *Hub) sendTo(client *Client, event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client] {
		h.deliverLocked(client, msg)
	}
}

func (h *Hub) deliverLocked(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		h.logger.Warn().Msg("client too slow, dropping")
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) readLoop(client *Client) {
	defer func() {
		h.removeClient(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(client *Client) {
	defer client.conn.Close()

	for msg := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
