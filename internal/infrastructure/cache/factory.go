// Package cache provides the ledger locks used to serialize payment
// verification, in process or through Redis.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewLocker returns a RedisLocker when a client is given and a LocalLocker
// otherwise
func NewLocker(cfg config.RedisConfig, client redis.UniversalClient, logger *zap.Logger) shared.Locker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		logger.Info("Using in-process ledger lock")
		return NewLocalLocker()
	}
	logger.Info("Using Redis ledger lock", zap.String("addr", cfg.Addr()))
	return NewRedisLocker(client,
		WithLockTTL(cfg.LockTTL),
		WithLockWait(cfg.LockWait),
		WithRetryInterval(cfg.LockInterval),
		WithLockLogger(logger),
	)
}
