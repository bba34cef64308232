package livestate

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLatestKey(t *testing.T) {
	if got := latestKey("machine-002"); got != "sensor_latest:machine-002" {
		t.Errorf("Unexpected key %s", got)
	}
}

func TestStateManager_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	sm := NewStateManager(client, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := sm.Ping(ctx); err == nil {
		t.Fatal("Expected ping error against closed port")
	}
	if _, err := sm.Latest(ctx, "machine-001"); err == nil {
		t.Error("Expected error from Latest")
	}
}
