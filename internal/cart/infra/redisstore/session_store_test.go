package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Runs against the Redis at REDIS_TEST_ADDR and is skipped without it.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	return client
}

func TestSessionStoreRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewSessionStore(client, time.Minute)

	sid := uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), keyPrefix+sid) })

	s := store.Session(sid)
	if _, ok, err := s.GetItem(ctx, "cart"); ok || err != nil {
		t.Fatalf("expected missing slot, got ok=%v err=%v", ok, err)
	}

	if err := s.SetItem(ctx, "cart", `[{"id":1,"quantity":2}]`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}

	v, ok, err := store.Session(sid).GetItem(ctx, "cart")
	if err != nil || !ok || v != `[{"id":1,"quantity":2}]` {
		t.Fatalf("GetItem = (%q, %v, %v)", v, ok, err)
	}

	ttl, err := client.TTL(ctx, keyPrefix+sid).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL = %v, err = %v", ttl, err)
	}
}

func TestSessionStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewSessionStore(client, 0)
	ctx := context.Background()

	if err := store.Ping(ctx); err == nil {
		t.Fatalf("expected ping error")
	}
	if _, _, err := store.Session("s1").GetItem(ctx, "cart"); err == nil {
		t.Fatalf("expected read error")
	}
	if err := store.Session("s1").SetItem(ctx, "cart", "[]"); err == nil {
		t.Fatalf("expected write error")
	}
}
