package live

import (
	"log"
	"net/http"
	"sync"

	"mandi/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Client is one websocket subscriber to a user's notification stream.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type pushMsg struct {
	UserID string
	Data   []byte
}

// Hub fans notification payloads out to each user's connected clients.
// A user may have several connections (phone and laptop) at once.
type Hub struct {
	users      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	push       chan pushMsg
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan pushMsg),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.users[c.UserID] == nil {
				h.users[c.UserID] = make(map[*Client]bool)
			}
			h.users[c.UserID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.users[c.UserID]; conns != nil && conns[c] {
				delete(conns, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case m := <-h.push:
			h.mu.Lock()
			for c := range h.users[m.UserID] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.users[m.UserID], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.users {
		for c := range conns {
			close(c.Send)
			delete(conns, c)
		}
	}
}

// Push delivers a payload to every connection the user has open.
// Drops silently when nobody is listening.
func (h *Hub) Push(userID string, data []byte) {
	select {
	case h.push <- pushMsg{UserID: userID, Data: data}:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// StreamHandler upgrades the connection and streams the caller's
// notifications. Websocket clients can't set headers, so the JWT comes
// in as ?token=.
func StreamHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ValidateRawToken(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			UserID: claims.UserID,
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump exists only to notice the peer going away; the stream is
// one-directional.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
