package redisstore

import (
	"context"
	"fmt"

	"unicorn-booking/internal/general/config"
	"unicorn-booking/internal/general/logger"

	"github.com/redis/go-redis/v9"
)

// NewClient builds a go-redis client bound to the client budgets and pings it once.
// Retries are disabled: every command is a single attempt.
func NewClient(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Client.ConnectTimeout,
		ReadTimeout:  cfg.Client.ReadTimeout,
		WriteTimeout: cfg.Client.ReadTimeout,
		MaxRetries:   -1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Client.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info(ctx, "redis_connected", "Connected to Redis", map[string]any{
		"addr": cfg.Redis.Addr,
		"db":   cfg.Redis.DB,
	})

	return client, nil
}
