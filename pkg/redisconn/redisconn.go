// Package redisconn opens go-redis clients and waits for the server to
// answer before handing them out.
package redisconn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
)

type Config struct {
	// Addr is "host:port" or a redis:// URL.
	Addr string

	// MaxWait bounds the initial ping retries. Zero means one minute.
	MaxWait time.Duration
}

// Open builds a traced client and pings it with exponential backoff until
// it answers or MaxWait elapses.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.Addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         cfg.Addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  3 * time.Minute,
		}
	}

	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())

	if err := WaitReady(ctx, client, cfg.MaxWait, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// WaitReady pings client until it answers, backing off exponentially.
func WaitReady(ctx context.Context, client redis.UniversalClient, maxWait time.Duration, log *slog.Logger) error {
	if maxWait <= 0 {
		maxWait = time.Minute
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxWait

	attempt := 0
	op := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis ping failed", slog.Int("attempt", attempt), slog.Any("err", err))
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("redis not ready after %d attempts: %w", attempt, err)
	}
	log.Info("redis ready", slog.Int("attempts", attempt))
	return nil
}
