package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

type broadcast struct {
	timelineID uint
	message    []byte
}

// Hub fans newly approved timeline posts out to connected feed viewers. All
// subscription state is owned by the Run goroutine: register, unregister and
// broadcast are serialized through its channels, so a client's Send channel
// is never closed while a delivery to it is in flight.
type Hub struct {
	Register     chan *Client
	Unregister   chan *Client
	broadcast    chan broadcast
	clients      map[*Client]bool
	timelineSubs map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		broadcast:    make(chan broadcast),
		clients:      make(map[*Client]bool),
		timelineSubs: make(map[uint]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.timelineSubs[client.TimelineID] == nil {
				h.timelineSubs[client.TimelineID] = make(map[*Client]bool)
			}
			h.timelineSubs[client.TimelineID][client] = true

		case client := <-h.Unregister:
			h.drop(client)

		case b := <-h.broadcast:
			for client := range h.timelineSubs[b.timelineID] {
				select {
				case client.Send <- b.message:
				default:
					// Slow consumer; drop the connection.
					h.drop(client)
				}
			}
		}
	}
}

// drop runs on the Run goroutine only.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.timelineSubs[client.TimelineID], client)
		close(client.Send)
	}
}

// BroadcastPost delivers a payload to every subscriber of a timeline. Safe
// to call on a nil hub.
func (h *Hub) BroadcastPost(timelineID uint, payload interface{}) {
	if h == nil {
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("error marshaling timeline broadcast: %v", err)
		return
	}

	h.broadcast <- broadcast{timelineID: timelineID, message: message}
}

// Client is one websocket subscriber of a timeline feed.
type Client struct {
	Hub        *Hub
	Conn       *websocket.Conn
	Send       chan []byte
	TimelineID uint
}

// ReadPump drains inbound frames and tears the client down on close.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
	}
}

// WritePump pumps hub messages to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
