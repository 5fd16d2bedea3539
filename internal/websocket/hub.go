package notifyws

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans persisted notifications out to connected clients. Delivery is
// best effort; a slow or absent client never blocks the sender.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliveries chan *delivery
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type delivery struct {
	userID  string
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan *delivery, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
		case client := <-h.unregister:
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
					if len(set) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
		case d := <-h.deliveries:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.payload:
				default:
					// Client can't keep up; drop it.
					delete(h.clients[d.userID], client)
					close(client.send)
				}
			}
		}
	}
}

// Push satisfies the notification service's pusher contract.
func (h *Hub) Push(recipientID int64, notification *models.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("marshal notification: %v", err)
		return
	}
	select {
	case h.deliveries <- &delivery{userID: strconv.FormatInt(recipientID, 10), payload: payload}:
	default:
		log.Println("notification hub backlog full, dropping push")
	}
}

// ServeClient registers the connection and pumps outbound messages until the
// client disconnects.
func (h *Hub) ServeClient(conn *websocket.Conn, userID int64) {
	client := &Client{
		hub:    h,
		conn:   conn,
		userID: strconv.FormatInt(userID, 10),
		send:   make(chan []byte, 16),
	}
	h.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
