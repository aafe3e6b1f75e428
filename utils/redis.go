package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roomstack/room-booking-backend/config"
)

var RedisClient *redis.Client

// InitRedis connects the shared Redis client
func InitRedis(cfg *config.Config) error {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := RedisClient.Ping(ctx).Err(); err != nil {
		RedisClient = nil
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// AcquireBuildLock sets a short-lived marker so only one worker rebuilds a
// given event's occurrence window at a time across replicas. Returns true
// when the caller holds the lock.
func AcquireBuildLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return RedisClient.SetNX(ctx, "matlock:"+key, 1, ttl).Result()
}

// ReleaseBuildLock drops the marker set by AcquireBuildLock
func ReleaseBuildLock(ctx context.Context, key string) {
	RedisClient.Del(ctx, "matlock:"+key)
}
