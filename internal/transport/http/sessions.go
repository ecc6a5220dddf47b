package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect4-engine/internal/service/game"
)

// SnapshotReader serves sessions that are no longer in memory.
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, sessionID string) (game.Snapshot, bool, error)
}

type SessionHandler struct {
	SessionManager *game.SessionManager
	Snapshots      SnapshotReader // Optional, can be nil
}

func NewSessionHandler(sm *game.SessionManager, snapshots SnapshotReader) *SessionHandler {
	return &SessionHandler{SessionManager: sm, Snapshots: snapshots}
}

// ListSessions returns a summary of every live session
func (h *SessionHandler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, h.SessionManager.ActiveSessions())
}

// GetSession returns the live snapshot, falling back to the cached one.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	if session, ok := h.SessionManager.GetSession(sessionID); ok {
		c.JSON(http.StatusOK, session.Snapshot())
		return
	}

	if h.Snapshots != nil {
		snapshot, ok, err := h.Snapshots.GetSnapshot(c.Request.Context(), sessionID)
		if err != nil {
			log.Printf("[HTTP] Snapshot lookup for %s failed: %v", sessionID, err)
		} else if ok {
			c.JSON(http.StatusOK, snapshot)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
}
