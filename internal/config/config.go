package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

type Config struct {
	Port                 string
	AllowedOrigins       []string
	FrontendURL          string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	KafkaBrokers         []string
	KafkaTopic           string
	KafkaUser            string
	KafkaPassword        string
	JWTSecret            string
	SessionTicketTTL     time.Duration
	BotThinkDelay        time.Duration
	DefaultDifficulty    domain.Difficulty
	OpeningColor         domain.Color
	SessionIdleTimeout   time.Duration
	SnapshotTTL          time.Duration
}

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	allowedOrigins = append(allowedOrigins, GetEnvAsList("ALLOWED_ORIGINS")...)

	// Game defaults
	difficulty, err := domain.ParseDifficulty(GetEnv("DEFAULT_DIFFICULTY", string(domain.Easy)))
	if err != nil {
		log.Printf("Invalid DEFAULT_DIFFICULTY, using default: %s", domain.Easy)
		difficulty = domain.Easy
	}
	opening, err := domain.ParseColor(GetEnv("OPENING_COLOR", "blue"))
	if err != nil {
		log.Printf("Invalid OPENING_COLOR, using default: %s", domain.Blue)
		opening = domain.Blue
	}

	return &Config{
		Port:                 port,
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		DatabaseURL:          GetEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:         GetEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:           GetEnv("KAFKA_TOPIC", "match-analytics"),
		KafkaUser:            GetEnv("KAFKA_USER", ""),
		KafkaPassword:        GetEnv("KAFKA_PASSWORD", ""),
		JWTSecret:            GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		SessionTicketTTL:     time.Duration(GetEnvAsInt("SESSION_TICKET_TTL_MINUTES", 120)) * time.Minute,
		BotThinkDelay:        time.Duration(GetEnvAsInt("BOT_THINK_DELAY_MS", 600)) * time.Millisecond,
		DefaultDifficulty:    difficulty,
		OpeningColor:         opening,
		SessionIdleTimeout:   time.Duration(GetEnvAsInt("SESSION_IDLE_TIMEOUT_MINUTES", 60)) * time.Minute,
		SnapshotTTL:          time.Duration(GetEnvAsInt("SNAPSHOT_TTL_MINUTES", 30)) * time.Minute,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsList splits a comma separated variable, dropping empty entries.
func GetEnvAsList(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
