package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one browser connection. It is bound to at most one session.
type client struct {
	conn *websocket.Conn

	// writeMu ensures only one goroutine writes to the socket at a time.
	writeMu sync.Mutex

	sessionID   string
	ticket      string
	unsubscribe func()
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn}
}

func (c *client) send(message ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(message)
}

// unbind stops forwarding session events to this client.
func (c *client) unbind() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.sessionID, c.ticket = "", ""
}

// ConnectionManager handles active WebSocket connections thread-safely. Each
// game session is watched by at most one connection.
type ConnectionManager struct {
	clients map[string]*client // sessionID → client
	mu      sync.RWMutex       // Protects the map itself
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*client),
	}
}

// AddConnection binds c to the session. A different client already bound to
// it is disconnected.
func (cm *ConnectionManager) AddConnection(sessionID string, c *client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.clients[sessionID]; exists && old != c {
		old.conn.Close()
	}
	cm.clients[sessionID] = c
}

// RemoveConnectionIfMatching avoids dropping a newer connection when cleaning
// up an old one.
func (cm *ConnectionManager) RemoveConnectionIfMatching(sessionID string, c *client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.clients[sessionID]; exists && current == c {
		delete(cm.clients, sessionID)
	}
}

func (cm *ConnectionManager) IsCurrentConnection(sessionID string, c *client) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	current, exists := cm.clients[sessionID]
	return exists && current == c
}

// Count is the number of sessions with a connected client.
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}
