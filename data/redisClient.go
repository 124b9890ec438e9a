package data

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/KotFed0t/stock_watchlist_bot/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient connects to the session store and panics when it is unreachable.
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, strconv.Itoa(cfg.Redis.Port)),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := PingRedis(ctx, rdb); err != nil {
		slog.Error("Error while connecting Redis", slog.String("err", err.Error()))
		panic(err)
	}

	return rdb
}

func PingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping %s: %w", rdb.Options().Addr, err)
	}

	slog.Info("Redis connected", slog.String("pong", pong), slog.String("addr", rdb.Options().Addr))
	return nil
}
