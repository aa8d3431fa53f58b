package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gamehall/backend/models"
)

// Connection holds one WebSocket connection. The write mutex keeps
// frames whole and preserves per-connection send ordering.
type Connection struct {
	ID         string
	Conn       *websocket.Conn
	WriteMutex sync.Mutex
}

// Hub tracks live connections and the named groups they belong to. It
// is the concrete broadcast channel the game hubs talk to.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection     // connID -> connection
	groups      map[string]map[string]bool // groupID -> connIDs
	memberOf    map[string]map[string]bool // connID -> groupIDs
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		groups:      make(map[string]map[string]bool),
		memberOf:    make(map[string]map[string]bool),
	}
}

// Register admits a raw connection and assigns it an id.
func (h *Hub) Register(conn *websocket.Conn) *Connection {
	c := &Connection{
		ID:   uuid.NewString(),
		Conn: conn,
	}

	h.mu.Lock()
	h.connections[c.ID] = c
	h.mu.Unlock()

	return c
}

// Unregister drops the connection and its group memberships.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for groupID := range h.memberOf[connID] {
		delete(h.groups[groupID], connID)
		if len(h.groups[groupID]) == 0 {
			delete(h.groups, groupID)
		}
	}
	delete(h.memberOf, connID)
	delete(h.connections, connID)
}

func (h *Hub) AddToGroup(connID, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[connID]; !ok {
		return
	}
	if h.groups[groupID] == nil {
		h.groups[groupID] = make(map[string]bool)
	}
	if h.memberOf[connID] == nil {
		h.memberOf[connID] = make(map[string]bool)
	}
	h.groups[groupID][connID] = true
	h.memberOf[connID][groupID] = true
}

func (h *Hub) RemoveFromGroup(connID, groupID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.groups[groupID], connID)
	if len(h.groups[groupID]) == 0 {
		delete(h.groups, groupID)
	}
	delete(h.memberOf[connID], groupID)
}

// SendToConn sends one event to one connection. Send failure is logged
// and swallowed; the read loop will notice a dead connection.
func (h *Hub) SendToConn(connID, event string, data any) {
	h.mu.RLock()
	c, ok := h.connections[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := h.write(c, event, data); err != nil {
		log.Printf("[WS] send %s to %s failed: %v", event, connID, err)
	}
}

// SendToGroup fans an event out to every member of a group.
func (h *Hub) SendToGroup(groupID, event string, data any) {
	h.mu.RLock()
	members := make([]*Connection, 0, len(h.groups[groupID]))
	for connID := range h.groups[groupID] {
		if c, ok := h.connections[connID]; ok {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := h.write(c, event, data); err != nil {
			log.Printf("[WS] group %s send %s to %s failed: %v", groupID, event, c.ID, err)
		}
	}
}

func (h *Hub) write(c *Connection, event string, data any) error {
	payload, err := json.Marshal(models.Frame{Event: event, Data: data})
	if err != nil {
		return err
	}

	c.WriteMutex.Lock()
	defer c.WriteMutex.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, payload)
}
