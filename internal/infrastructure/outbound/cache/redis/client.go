package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"marites-post-service/internal/custom_errors"
	ports "marites-post-service/internal/domain/ports/output"
	"marites-post-service/internal/infrastructure/config"
)

const (
	clientName   = "marites-post-service"
	dialTimeout  = 5 * time.Second
	ioTimeout    = 3 * time.Second
	startupProbe = 5 * time.Second
)

// Client stores JSON documents in Redis. A missing key is reported as
// custom_errors.ErrCacheMiss.
type Client struct {
	rdb *redis.Client
	log ports.Logger
}

func NewClient(cfg config.Redis, log ports.Logger) (*Client, error) {
	addr := net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		ClientName:   clientName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})
	c := &Client{rdb: rdb, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), startupProbe)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info("Connected to Redis", slog.String("address", addr), slog.Int("db", cfg.DB))
	return c, nil
}

// GetJSON decodes the value stored at key into dest.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.log.Debug("Cache miss", slog.String("key", key))
		return custom_errors.ErrCacheMiss
	case err != nil:
		return c.fail("get", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return c.fail("decode", key, err)
	}
	c.log.Debug("Cache hit", slog.String("key", key))
	return nil
}

// SetJSON stores value at key for ttl. A zero ttl keeps the key forever.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return c.fail("encode", key, err)
	}
	if err := c.rdb.SetArgs(ctx, key, raw, redis.SetArgs{TTL: ttl}).Err(); err != nil {
		return c.fail("set", key, err)
	}
	return nil
}

// Delete removes keys and reports how many existed.
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, c.fail("delete", keys[0], err)
	}
	return removed, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.log.Error("Redis ping failed", slog.String("error", err.Error()))
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	stats := c.rdb.PoolStats()
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	c.log.Info("Redis connection closed",
		slog.Uint64("hits", uint64(stats.Hits)),
		slog.Uint64("timeouts", uint64(stats.Timeouts)))
	return nil
}

func (c *Client) fail(op, key string, err error) error {
	c.log.Error("Redis operation failed",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()))
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}
