package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect4-engine/internal/service/game"
)

type MatchLister interface {
	ListRecent(ctx context.Context, limit int) ([]game.MatchRecord, error)
}

type MatchHandler struct {
	Matches MatchLister // nil when no database is configured
}

func NewMatchHandler(matches MatchLister) *MatchHandler {
	return &MatchHandler{Matches: matches}
}

// ListMatches returns the most recently finished matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	if h.Matches == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Match history is disabled"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = n
	}

	matches, err := h.Matches.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[HTTP] Failed to fetch matches: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch matches"})
		return
	}
	if matches == nil {
		matches = []game.MatchRecord{}
	}
	c.JSON(http.StatusOK, matches)
}
