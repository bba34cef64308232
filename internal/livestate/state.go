// Package livestate mirrors the newest live reading of every machine into
// Redis so other processes can read it without subscribing.
package livestate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smukkama/factory-monitor/internal/protocol"
)

const keyPrefix = "sensor_latest:"

// StateManager stores the latest reading per machine in Redis
type StateManager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStateManager creates a new state manager. Entries expire after ttl.
func NewStateManager(redisClient *redis.Client, ttl time.Duration) *StateManager {
	return &StateManager{redis: redisClient, ttl: ttl}
}

func latestKey(machineID string) string {
	return keyPrefix + machineID
}

// Name identifies the sink in logs
func (sm *StateManager) Name() string { return "redis" }

// Deliver overwrites the machine's latest reading
func (sm *StateManager) Deliver(ctx context.Context, msg *protocol.ReadingMessage) error {
	data, err := protocol.EncodeReadingMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	if err := sm.redis.Set(ctx, latestKey(msg.MachineID), data, sm.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest reading in Redis: %w", err)
	}

	return nil
}

// Latest returns the machine's latest reading, or nil if none is stored
func (sm *StateManager) Latest(ctx context.Context, machineID string) (*protocol.ReadingMessage, error) {
	data, err := sm.redis.Get(ctx, latestKey(machineID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reading from Redis: %w", err)
	}

	return protocol.DecodeReadingMessage(data)
}

// All returns every stored reading keyed by machine id. Entries that fail to
// decode are skipped.
func (sm *StateManager) All(ctx context.Context) (map[string]*protocol.ReadingMessage, error) {
	out := make(map[string]*protocol.ReadingMessage)

	iter := sm.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := sm.redis.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}

		var msg protocol.ReadingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		out[strings.TrimPrefix(key, keyPrefix)] = &msg
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan latest readings: %w", err)
	}

	return out, nil
}

// Ping checks the Redis connection
func (sm *StateManager) Ping(ctx context.Context) error {
	return sm.redis.Ping(ctx).Err()
}
