package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/connect4-engine/internal/transport/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	Sessions       *SessionHandler
	Matches        *MatchHandler
	WebSocket      http.HandlerFunc

	// Connections reports open websocket clients on /healthz when set.
	Connections func() int
}

// NewRouter wires every route of the API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok", "sessions": len(cfg.Sessions.SessionManager.ActiveSessions())}
		if cfg.Connections != nil {
			body["connections"] = cfg.Connections()
		}
		c.JSON(http.StatusOK, body)
	})

	api := router.Group("/api")
	{
		api.GET("/sessions", cfg.Sessions.ListSessions)
		api.GET("/sessions/:id", cfg.Sessions.GetSession)
		api.GET("/matches", cfg.Matches.ListMatches)
	}

	// WebSocket Route (the handler checks origins itself)
	if cfg.WebSocket != nil {
		router.GET("/ws", gin.WrapF(cfg.WebSocket))
	}

	return router
}
