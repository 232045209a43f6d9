package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blackhelm/tradefloor/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are screened by the CORS middleware on the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is the envelope broadcast to websocket clients.
type streamMessage struct {
	Type string        `json:"type"`
	Data tradeResponse `json:"data"`
}

// Hub fans executed trades out to connected websocket clients. It
// implements service.TradeDispatcher: the order service hands it every
// trade after the matching pass has released the book lock. A client
// that cannot keep up is dropped rather than backpressuring the hub.
type Hub struct {
	logger     *slog.Logger
	register   chan *streamClient
	unregister chan *streamClient
	broadcast  chan []byte
	clients    map[*streamClient]bool
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*streamClient]bool),
	}
}

// Run drives the hub's registration and broadcast loop until ctx is
// cancelled, then closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client; disconnect it.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// DispatchTrade broadcasts an executed trade to all clients.
func (h *Hub) DispatchTrade(t *domain.Trade) {
	msg, err := json.Marshal(streamMessage{Type: "trade", Data: toTradeResponse(t)})
	if err != nil {
		h.logger.Error("trade stream marshal failed", slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("trade stream backlog full, dropping trade",
			slog.String("trade_id", t.TradeID))
	}
}

// ServeWS handles GET /ws by upgrading the connection and streaming
// trades until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, clientSendSize)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// writePump forwards broadcast messages to the connection. It exits
// when the hub closes the send channel.
func (c *streamClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; its job is to notice disconnects.
func (c *streamClient) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
