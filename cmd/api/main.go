package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iamasit07/connect4-engine/internal/config"
	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/event"
	"github.com/iamasit07/connect4-engine/internal/repository/postgres"
	"github.com/iamasit07/connect4-engine/internal/repository/redis"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/internal/service/cleanup"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	transportHttp "github.com/iamasit07/connect4-engine/internal/transport/http"
	"github.com/iamasit07/connect4-engine/internal/transport/websocket"
	"github.com/iamasit07/connect4-engine/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()

	opts := game.Options{
		Strategist:  bot.NewStrategist(nil),
		ThinkDelay:  cfg.BotThinkDelay,
		SnapshotTTL: cfg.SnapshotTTL,
	}

	// 1. Postgres (optional)
	var matches transportHttp.MatchLister
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatalf("Database unreachable: %v", err)
		}
		defer db.Close()

		matchRepo := postgres.NewMatchRepo(db)
		opts.Repo = matchRepo
		matches = matchRepo
	} else {
		log.Println("DATABASE_URL not set, match history is disabled")
	}

	// 2. Redis (optional)
	var snapshots transportHttp.SnapshotReader
	redisClient, redisEnabled, err := redis.InitRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Printf("[REDIS] Warning: %v. Snapshots stay in memory only.", err)
	}
	if redisEnabled {
		defer redisClient.Close()
		cache := redis.NewSnapshotCache(redisClient)
		opts.Cache = cache
		snapshots = cache
	}

	// 3. Kafka (optional)
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := event.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaUser, cfg.KafkaPassword)
		if err != nil {
			log.Printf("[KAFKA] Warning: producer unavailable: %v", err)
		} else {
			defer producer.Close()
			opts.Publisher = producer
		}
	}

	// 4. Services
	sessionManager := game.NewSessionManager(opts)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cleanup.NewWorker(sessionManager, cfg.SessionIdleTimeout).Start(ctx)

	// 5. Transport
	connManager := websocket.NewConnectionManager()
	wsHandler := websocket.NewHandler(
		connManager,
		sessionManager,
		auth.NewTicketIssuer(cfg.JWTSecret, cfg.SessionTicketTTL),
		websocket.Defaults{
			Mode:       domain.PlayerVsComputer,
			Difficulty: cfg.DefaultDifficulty,
			Opening:    cfg.OpeningColor,
		},
		cfg.AllowedOrigins,
	)

	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Sessions:       transportHttp.NewSessionHandler(sessionManager, snapshots),
		Matches:        transportHttp.NewMatchHandler(matches),
		WebSocket:      wsHandler.HandleWebSocket,
		Connections:    connManager.Count,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Let finished matches reach the database before it closes.
	for _, summary := range sessionManager.ActiveSessions() {
		if session, ok := sessionManager.GetSession(summary.SessionID); ok {
			session.Wait()
		}
	}

	log.Println("Server exited gracefully")
}
