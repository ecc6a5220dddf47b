package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamasit07/connect4-engine/internal/service/game"
)

const snapshotKeyPrefix = "snapshot:"

const defaultSnapshotTTL = 30 * time.Minute

// SnapshotCache keeps the last known state of each session so it can be
// served after the process that ran it is gone.
type SnapshotCache struct {
	client *redis.Client
}

func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{client: client}
}

func snapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

func (c *SnapshotCache) SaveSnapshot(ctx context.Context, snapshot game.Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %v", err)
	}
	return c.client.Set(ctx, snapshotKey(snapshot.SessionID), data, ttl).Err()
}

// GetSnapshot returns false when nothing is cached for the session.
func (c *SnapshotCache) GetSnapshot(ctx context.Context, sessionID string) (game.Snapshot, bool, error) {
	var snapshot game.Snapshot

	data, err := c.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snapshot, false, nil
	}
	if err != nil {
		return snapshot, false, err
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, false, fmt.Errorf("failed to unmarshal snapshot of %s: %v", sessionID, err)
	}
	return snapshot, true, nil
}

func (c *SnapshotCache) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, snapshotKey(sessionID)).Err()
}
