// Package redisstore keeps session storage in Redis: one hash per session,
// one field per slot, expiring ttl after the last write.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "session:"

type SessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSessionStore stores sessions in client. A zero ttl never expires them.
func NewSessionStore(client redis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (r *SessionStore) Session(sessionID string) app.SessionStorage {
	return &session{client: r.client, key: keyPrefix + sessionID, ttl: r.ttl}
}

func (r *SessionStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type session struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

func (s *session) GetItem(ctx context.Context, field string) (string, bool, error) {
	val, err := s.client.HGet(ctx, s.key, field).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis HGET %s %s: %w", s.key, field, err)
	}
	return val, true, nil
}

func (s *session) SetItem(ctx context.Context, field, value string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key, field, value)
		if s.ttl > 0 {
			p.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis HSET %s %s: %w", s.key, field, err)
	}
	return nil
}
