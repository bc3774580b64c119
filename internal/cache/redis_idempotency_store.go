package cache

import (
	"context"
	"fmt"
	"time"

	"novel-relay/internal/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "rounds:idempotency:"

var _ interfaces.IdempotencyStore = (*redisIdempotencyStore)(nil)

type redisIdempotencyStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisIdempotencyStore создаёт IdempotencyStore на Redis (SET NX с TTL).
func NewRedisIdempotencyStore(client *redis.Client, logger *zap.Logger) interfaces.IdempotencyStore {
	return &redisIdempotencyStore{
		client: client,
		logger: logger.Named("RedisIdempotencyStore"),
	}
}

func (s *redisIdempotencyStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		s.logger.Error("Failed to acquire idempotency key", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		s.logger.Error("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Connect создаёт клиент Redis и проверяет соединение, повторяя попытки.
func Connect(ctx context.Context, opts *redis.Options, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*redis.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			logger.Info("Connected to Redis", zap.String("address", opts.Addr), zap.Int("attempt", attempt))
			return client, nil
		}
		_ = client.Close()
		lastErr = err
		logger.Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries, lastErr)
}
