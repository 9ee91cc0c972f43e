package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis pings addr until it answers or attempts run out.
func ConnectRedis(ctx context.Context, addr, password string, attempts int, backoff time.Duration) (*redis.Client, error) {
	logger := zap.L().Named("platform.cache")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	var lastErr error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		lastErr = rdb.Ping(pingCtx).Err()
		cancel()
		if lastErr == nil {
			logger.Info("redis connected", zap.String("addr", addr))
			return rdb, nil
		}
		logger.Warn("redis ping failed",
			zap.Int("attempt", i),
			zap.Int("attempts", attempts),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	_ = rdb.Close()
	return nil, fmt.Errorf("redis %s unreachable after %d attempts: %w", addr, attempts, lastErr)
}
