package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"meetspot-backend/util"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev (restrict in production)
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// wsClient wraps a connection with a write mutex. gorilla/websocket allows
// only one concurrent writer per connection, and frames can come from both
// the client's read loop and any HTTP handler publishing to a room.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// RoomHub is the room-subscription registry: one room per event id, each
// holding the currently subscribed clients. Delivery is best-effort to
// clients subscribed at publish time; there is no queue and no replay.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*wsClient]bool
}

func NewRoomHub() *RoomHub {
	return &RoomHub{rooms: make(map[string]map[*wsClient]bool)}
}

func (h *RoomHub) Subscribe(room string, client *wsClient) {
	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*wsClient]bool)
	}
	h.rooms[room][client] = true
	h.mu.Unlock()
}

func (h *RoomHub) Unsubscribe(room string, client *wsClient) {
	h.mu.Lock()
	if subscribers, ok := h.rooms[room]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
}

// Drop removes the client from every room. Called on disconnect.
func (h *RoomHub) Drop(client *wsClient) {
	h.mu.Lock()
	for room, subscribers := range h.rooms {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
}

// Publish sends a message to every client subscribed to the room. Writes go
// through each client's write mutex; dead clients are dropped from the
// registry.
func (h *RoomHub) Publish(room, msgType string, data interface{}) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	msg := WSMessage{Type: msgType, Data: data}
	for _, client := range clients {
		if err := client.writeJSON(msg); err != nil {
			log.Printf("Error publishing to room %s: %v", room, err)
			h.Unsubscribe(room, client)
		}
	}
}

// Close tears the registry down, closing every subscribed connection.
func (h *RoomHub) Close() {
	h.mu.Lock()
	for _, subscribers := range h.rooms {
		for client := range subscribers {
			client.conn.Close()
		}
	}
	h.rooms = make(map[string]map[*wsClient]bool)
	h.mu.Unlock()
}

var hub = NewRoomHub()

// PublishToRoom fans a message out to the event's room subscribers.
func PublishToRoom(eventID, msgType string, data interface{}) {
	hub.Publish(eventID, msgType, data)
}

// ShutdownHub closes every room connection. Called on server shutdown.
func ShutdownHub() {
	hub.Close()
}

// WebSocketHandler upgrades the connection and processes room join/leave
// frames. Room subscription itself carries no chat-access check; the HTTP
// chat endpoints enforce access, and a session token in the query string is
// resolved only for logging.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID := int64(0)
	if token := r.URL.Query().Get("token"); token != "" {
		userID = util.GetUserIDFromSession(token)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	defer conn.Close()
	defer hub.Drop(client)

	log.Printf("WebSocket client connected (user %d)", userID)

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("WebSocket read error (user %d): %v", userID, err)
			break
		}

		var req struct {
			EventID string `json:"event_id"`
		}
		raw, err := json.Marshal(msg.Data)
		if err == nil {
			err = json.Unmarshal(raw, &req)
		}
		if err != nil || req.EventID == "" {
			client.writeJSON(WSMessage{Type: "error", Data: "event_id is required"})
			continue
		}

		switch msg.Type {
		case "join_chat":
			hub.Subscribe(req.EventID, client)
			hub.Publish(req.EventID, "chat_joined", map[string]string{
				"message": "User joined chat for event " + req.EventID,
			})
		case "leave_chat":
			hub.Unsubscribe(req.EventID, client)
			hub.Publish(req.EventID, "chat_left", map[string]string{
				"message": "User left chat for event " + req.EventID,
			})
		default:
			log.Printf("Unknown message type from user %d: %s", userID, msg.Type)
		}
	}
}
