package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
	"github.com/iamasit07/connect4-engine/pkg/auth"
	"github.com/iamasit07/connect4-engine/pkg/httputil"
)

// Defaults fill in start_game fields the client leaves out.
type Defaults struct {
	Mode       domain.GameMode
	Difficulty domain.Difficulty
	Opening    domain.Color
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Tickets        *auth.TicketIssuer
	Defaults       Defaults
	Upgrader       websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list
// accepts every origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, tickets *auth.TicketIssuer, defaults Defaults, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Tickets:        tickets,
		Defaults:       defaults,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	log.Printf("[WS] Connection opened from %s", httputil.ClientAddress(r))
	h.handleConnection(conn, httputil.GetTicketFromRequest(r))
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn, ticket string) {
	c := newClient(conn)

	// Set read deadline to detect stale connections
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		if c.sessionID != "" {
			log.Printf("[WS] Connection closed, session %s stays until idle cleanup", c.sessionID)
			h.ConnManager.RemoveConnectionIfMatching(c.sessionID, c)
			c.unbind()
		}
		conn.Close()
	}()

	if ticket != "" {
		h.resume(c, ticket)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Client disconnected unexpectedly: %v", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message format: %v", err)
			c.send(errorMessage("Invalid message format"))
			continue
		}

		h.processMessage(c, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(c *client, msg ClientMessage) {
	switch msg.Type {
	case msgStartGame:
		h.startGame(c, msg)

	case msgResume:
		h.resume(c, msg.Ticket)

	case msgDropColumn:
		session := h.sessionFor(c)
		if session == nil {
			return
		}
		// A full column is reported through the column_full event.
		_, _, err := session.RequestColumnDrop(msg.Column)
		if err != nil && !errors.Is(err, domain.ErrColumnFull) {
			c.send(errorMessage(err.Error()))
		}

	case msgDiskSettled:
		session := h.sessionFor(c)
		if session == nil {
			return
		}
		if err := session.NotifyDiskSettled(msg.Generation, msg.Row, msg.Column); err != nil {
			c.send(errorMessage(err.Error()))
		}

	case msgRestartGame:
		session := h.sessionFor(c)
		if session == nil {
			return
		}
		if err := session.RestartGame(); err != nil {
			c.send(errorMessage(err.Error()))
		}

	case msgStopGame:
		if session := h.sessionFor(c); session != nil {
			session.Stop()
		}

	case msgSetPaused:
		if session := h.sessionFor(c); session != nil {
			session.SetPaused(msg.Paused)
		}

	default:
		c.send(errorMessage("Unknown message type: " + msg.Type))
	}
}

func (h *Handler) startGame(c *client, msg ClientMessage) {
	mode, difficulty, opening := h.Defaults.Mode, h.Defaults.Difficulty, h.Defaults.Opening
	var err error
	if msg.Mode != "" {
		if mode, err = domain.ParseGameMode(msg.Mode); err != nil {
			c.send(errorMessage(err.Error()))
			return
		}
	}
	if msg.Difficulty != "" {
		if difficulty, err = domain.ParseDifficulty(msg.Difficulty); err != nil {
			c.send(errorMessage(err.Error()))
			return
		}
	}
	if msg.Opening != "" {
		if opening, err = domain.ParseColor(msg.Opening); err != nil {
			c.send(errorMessage(err.Error()))
			return
		}
	}

	session, exists := h.SessionManager.GetSession(c.sessionID)
	if !exists {
		session = h.SessionManager.CreateSession()
		if err := h.bind(c, session); err != nil {
			c.send(errorMessage("Could not open session"))
			return
		}
	}

	if err := session.StartGame(mode, opening, difficulty); err != nil {
		c.send(errorMessage(err.Error()))
	}
}

func (h *Handler) resume(c *client, ticket string) {
	claims, err := h.Tickets.ValidateTicket(ticket)
	if err != nil {
		log.Printf("[WS] Rejected resume: %v", err)
		c.send(errorMessage("Invalid or expired ticket"))
		return
	}
	session, exists := h.SessionManager.GetSession(claims.SessionID)
	if !exists {
		c.send(errorMessage("Session not found"))
		return
	}
	if err := h.bind(c, session); err != nil {
		c.send(errorMessage("Could not open session"))
		return
	}

	snapshot := session.Snapshot()
	c.send(ServerMessage{
		Type:       msgResumed,
		SessionID:  session.ID,
		Ticket:     c.ticket,
		Generation: snapshot.Generation,
		Snapshot:   &snapshot,
	})
	log.Printf("[WS] Session %s resumed", session.ID)
}

// sessionFor returns the session the client is bound to, or reports why there
// is none.
func (h *Handler) sessionFor(c *client) *game.Session {
	if c.sessionID == "" {
		c.send(errorMessage(domain.ErrNoGame.Error()))
		return nil
	}
	session, exists := h.SessionManager.GetSession(c.sessionID)
	if !exists {
		h.ConnManager.RemoveConnectionIfMatching(c.sessionID, c)
		c.unbind()
		c.send(errorMessage("Session expired"))
		return nil
	}
	return session
}

// bind makes c the watcher of session and forwards its events to c.
func (h *Handler) bind(c *client, session *game.Session) error {
	if c.sessionID == session.ID {
		h.ConnManager.AddConnection(session.ID, c)
		return nil
	}

	ticket, err := h.Tickets.GenerateTicket(session.ID)
	if err != nil {
		log.Printf("[WS] Could not sign ticket for %s: %v", session.ID, err)
		return err
	}

	if c.sessionID != "" {
		h.ConnManager.RemoveConnectionIfMatching(c.sessionID, c)
		c.unbind()
	}

	sessionID := session.ID
	c.sessionID, c.ticket = sessionID, ticket
	h.ConnManager.AddConnection(sessionID, c)

	c.unsubscribe = session.Subscribe(turn.ListenerFunc(func(ev turn.Event) {
		if !h.ConnManager.IsCurrentConnection(sessionID, c) {
			return
		}
		msg := eventMessage(ev)
		if ev.Type == turn.EventGameStarted {
			players := session.Snapshot().Players
			msg.SessionID, msg.Ticket, msg.Players = sessionID, ticket, &players
		}
		if err := c.send(msg); err != nil {
			log.Printf("[WS] Error sending %s to session %s: %v", msg.Type, sessionID, err)
		}
	}))
	return nil
}
