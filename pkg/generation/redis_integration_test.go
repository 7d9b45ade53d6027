//go:build integration

package generation

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_RedisCounter(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	a := NewRedisCounter(redisClient, "session-a", time.Minute)
	b := NewRedisCounter(redisClient, "session-b", time.Minute)

	if cur, err := a.Current(ctx); err != nil || cur != 0 {
		t.Fatalf("Current() = %d, %v; want 0, nil", cur, err)
	}

	for want := uint64(1); want <= 3; want++ {
		got, err := a.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}

	if cur, _ := b.Current(ctx); cur != 0 {
		t.Errorf("session-b Current() = %d, want 0 (sessions must be isolated)", cur)
	}

	// A second replica reading the same session sees the same generation.
	replica := NewRedisCounter(redisClient, "session-a", time.Minute)
	if cur, _ := replica.Current(ctx); cur != 3 {
		t.Errorf("replica Current() = %d, want 3", cur)
	}

	ttl, err := redisClient.TTL(ctx, a.Key()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestIntegration_RedisCounter_Unavailable(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	cleanup()

	c := NewRedisCounter(redisClient, "gone", 0)
	if _, err := c.Next(context.Background()); err == nil {
		t.Error("Next() expected error with closed client")
	}
}

func TestIntegration_RedisCounter_Touch(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	c := NewRedisCounter(redisClient, "session-touch", time.Hour)
	var _ Toucher = c

	if _, err := c.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	// Shorten the expiry as if the session had been idle.
	if err := redisClient.Expire(ctx, c.Key(), 5*time.Second).Err(); err != nil {
		t.Fatalf("Expire() error = %v", err)
	}

	if err := c.Touch(ctx); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	ttl, _ := redisClient.TTL(ctx, c.Key()).Result()
	if ttl <= time.Minute {
		t.Errorf("TTL after Touch = %v, want close to 1h", ttl)
	}
	if cur, _ := c.Current(ctx); cur != 1 {
		t.Errorf("Current() = %d, Touch must not advance the generation", cur)
	}

	// Touching a missing key does not create it.
	fresh := NewRedisCounter(redisClient, "session-untouched", time.Hour)
	if err := fresh.Touch(ctx); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if n, _ := redisClient.Exists(ctx, fresh.Key()).Result(); n != 0 {
		t.Error("Touch created the key")
	}
}
