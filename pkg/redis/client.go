package redis

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type client struct {
	logger  *logger.Logger
	config  *Config
	cmdable redis.Cmdable
}

// NewClient creates a new Redis client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Connect(ctx context.Context) error {
	var cmdable redis.Cmdable
	if c.config == nil {
		return errors.NewErrorDetails("Redis config is nil", string(errors.RedisConfigError), "connect")
	}

	if len(c.config.Addrs) == 0 {
		return errors.NewErrorDetails("Redis addresses are empty", string(errors.RedisConfigError), "connect")
	}

	if c.config.Mode != Standalone && c.config.Mode != Cluster {
		return errors.NewErrorDetails("Invalid Redis mode", string(errors.RedisConfigError), "connect")
	}

	if c.config.ConnectTimeout <= 0 {
		return errors.NewErrorDetails("Invalid Redis connect timeout", string(errors.RedisConfigError), "connect")
	}
	if c.config.PoolSize <= 0 {
		return errors.NewErrorDetails("Invalid Redis pool size", string(errors.RedisConfigError), "connect")
	}

	switch c.config.Mode {
	case Standalone:
		cmdable = redis.NewClient(&redis.Options{
			Addr:            c.config.Addrs[0],
			Username:        c.config.Username,
			Password:        c.config.Password,
			DB:              c.config.DB,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	case Cluster:
		cmdable = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           c.config.Addrs,
			Username:        c.config.Username,
			Password:        c.config.Password,
			MaxRetries:      c.config.MaxRetries,
			MinRetryBackoff: c.config.MinRetryBackoff,
			MaxRetryBackoff: c.config.MaxRetryBackoff,
			DialTimeout:     c.config.ConnectTimeout,
			ReadTimeout:     c.config.ConnectTimeout,
			WriteTimeout:    c.config.ConnectTimeout,
			PoolSize:        c.config.PoolSize,
			MinIdleConns:    c.config.MinIdleConns,
			MaxIdleConns:    c.config.MaxIdleConns,
			ConnMaxLifetime: c.config.ConnMaxLifetime,
			ConnMaxIdleTime: c.config.ConnMaxIdleTime,
			PoolTimeout:     c.config.PoolTimeout,
		})
	default:
		return errors.NewErrorDetails("Unsupported Redis mode", string(errors.RedisConnectionError), "connect")
	}

	c.cmdable = cmdable

	return c.cmdable.Ping(ctx).Err()
}

func (c *client) Reconnect(ctx context.Context) bool {
	baseDelay := c.config.MinRetryBackoff
	maxDelay := c.config.MaxRetryBackoff

	for i := range c.config.ReconnectMaxRetries {
		backoff := min(baseDelay*time.Duration(math.Pow(2, float64(i))), maxDelay)

		jitter := time.Duration(rand.IntN(1000)) * time.Millisecond
		totalDelay := backoff + jitter

		c.logger.Info("Reconnecting to Redis", logger.Field{
			Key:   "attempt",
			Value: i + 1,
		}, logger.Field{
			Key:   "delay",
			Value: totalDelay,
		})

		select {
		case <-ctx.Done():
			c.logger.Info("Reconnect cancelled", logger.Field{
				Key:   "reason",
				Value: ctx.Err(),
			})
			return false
		case <-time.After(totalDelay):
			connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := c.Connect(connectCtx)
			cancel()
			if err == nil {
				c.logger.Info("Reconnected to Redis successfully", logger.Field{
					Key:   "attempt",
					Value: i + 1,
				})
				return true
			}
			c.logger.Error(errors.TracerFromError(err), logger.Field{
				Key:   "attempt",
				Value: i + 1,
			}, logger.Field{
				Key:   "error",
				Value: err.Error(),
			})
		}
	}

	return true
}

func (c *client) Disconnect(ctx context.Context) error {
	switch c.config.Mode {
	case Standalone:
		return c.cmdable.(*redis.Client).Close()
	case Cluster:
		return c.cmdable.(*redis.ClusterClient).Close()
	default:
		return errors.NewErrorDetails("Unsupported Redis mode for disconnect", string(errors.RedisDisconnectionError), "disconnect")
	}
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.cmdable.Ping(ctx).Err(); err != nil {
		return errors.NewErrorDetails("Failed to ping Redis", string(errors.RedisPingError), "ping")
	}
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.cmdable.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.NewErrorDetails("Failed to get value from Redis", string(errors.RedisGetError), "get")
	}
	return val, nil
}

func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.cmdable.Set(ctx, key, value, expiration).Err(); err != nil {
		return errors.NewErrorDetails("Failed to set value in Redis", string(errors.RedisSetError), "set")
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	deleted, err := c.cmdable.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewErrorDetails("Failed to delete keys from Redis", string(errors.RedisDelError), "del")
	}
	return deleted, nil
}
