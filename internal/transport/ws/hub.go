package ws

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Outgoing messages buffered per client.
	sendBuffer = 64
)

// Client is one websocket connection attached to a board session.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *session
}

// delivery is a message addressed to a single client.
type delivery struct {
	client *Client
	data   []byte
}

// broadcast is a message for every client of a session.
type broadcast struct {
	session *session
	data    []byte
}

// Hub tracks the clients of every session. Clients are grouped by the
// session they hold, not by its ID, so a client keeps seeing the board it
// joined even if its ID is reused. All bookkeeping happens on the
// goroutine running Run; other goroutines talk to it through channels.
type Hub struct {
	sessions map[*session]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcast
	direct     chan delivery
	done       chan struct{}

	// onMessage handles a frame read from a client.
	onMessage func(c *Client, data []byte)
	// onLeave is called for every client that is unregistered.
	onLeave func(c *Client)

	logger *log.Logger
}

// NewHub creates a hub. Handlers may be nil.
func NewHub(logger *log.Logger, onMessage func(*Client, []byte), onLeave func(*Client)) *Hub {
	return &Hub{
		sessions:   make(map[*session]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcast),
		direct:     make(chan delivery),
		done:       make(chan struct{}),
		onMessage:  onMessage,
		onLeave:    onLeave,
		logger:     logger,
	}
}

// Run processes hub events until ctx is cancelled. Remaining clients are
// disconnected on return.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for c := range clients {
					close(c.send)
				}
			}
			h.sessions = make(map[*session]map[*Client]bool)
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case b := <-h.broadcast:
			for c := range h.sessions[b.session] {
				h.deliver(c, b.data)
			}

		case d := <-h.direct:
			if h.sessions[d.client.session][d.client] {
				h.deliver(d.client, d.data)
			}
		}
	}
}

// deliver queues data for a client, dropping clients that cannot keep up.
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("client too slow, disconnecting", "session", c.session.id)
		h.unregisterClient(c)
	}
}

// Register attaches a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast sends data to every client of a session.
func (h *Hub) Broadcast(sess *session, data []byte) {
	select {
	case h.broadcast <- broadcast{session: sess, data: data}:
	case <-h.done:
	}
}

// Send sends data to one client.
func (h *Hub) Send(c *Client, data []byte) {
	select {
	case h.direct <- delivery{client: c, data: data}:
	case <-h.done:
	}
}

// registerClient adds a client to its session.
func (h *Hub) registerClient(c *Client) {
	clients := h.sessions[c.session]
	if clients == nil {
		clients = make(map[*Client]bool)
		h.sessions[c.session] = clients
	}
	clients[c] = true

	h.logger.Debug("client registered", "session", c.session.id, "clients", len(clients))
}

// unregisterClient removes a client and closes its send channel.
func (h *Hub) unregisterClient(c *Client) {
	clients, ok := h.sessions[c.session]
	if !ok || !clients[c] {
		return
	}

	delete(clients, c)
	close(c.send)
	h.logger.Debug("client unregistered", "session", c.session.id, "clients", len(clients))

	if len(clients) == 0 {
		delete(h.sessions, c.session)
	}
	if h.onLeave != nil {
		h.onLeave(c)
	}
}

// readPump pumps messages from the websocket connection to the handler.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		//nolint:errcheck // Connection is being torn down
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	//nolint:errcheck // A failed deadline surfaces on the next read
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "session", c.session.id, "error", err)
			}
			return
		}
		if c.hub.onMessage != nil {
			c.hub.onMessage(c, data)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
// Each message goes out as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		//nolint:errcheck // Connection is being torn down
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			//nolint:errcheck // A failed deadline surfaces on the write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				//nolint:errcheck // Peer may already be gone
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // A failed deadline surfaces on the write
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
