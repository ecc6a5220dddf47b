package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// InitRedis opens a client for the snapshot cache. An empty addr leaves the
// cache off without error. When the server does not answer the client is
// closed and the ping error returned; callers keep running without a cache.
func InitRedis(addr, password string) (*redis.Client, bool, error) {
	if addr == "" {
		log.Println("[REDIS] No address configured, snapshots stay in memory only")
		return nil, false, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, false, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	log.Printf("[REDIS] Connected to %s", addr)
	return client, true, nil
}
