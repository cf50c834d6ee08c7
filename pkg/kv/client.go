package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
)

type client struct {
	logger *logger.Logger
	config *Config
	db     *pebble.DB
}

// NewClient creates a new embedded store client with the provided logger and configuration.
func NewClient(logger *logger.Logger, config *Config) Client {
	return &client{
		logger: logger,
		config: config,
	}
}

func (c *client) Open(ctx context.Context) error {
	if c.config == nil {
		return errors.NewErrorDetails("KV config is nil", string(errors.KVConfigError), "open")
	}
	if c.config.Path == "" {
		return errors.NewErrorDetails("KV path is empty", string(errors.KVConfigError), "open")
	}

	db, err := pebble.Open(c.config.Path, &pebble.Options{})
	if err != nil {
		c.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
			Key:   "path",
			Value: c.config.Path,
		})
		return errors.NewErrorDetails("Failed to open embedded store", string(errors.KVOpenError), "open")
	}

	c.db = db
	return nil
}

func (c *client) Close(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return errors.NewErrorDetails("Failed to close embedded store", string(errors.KVCloseError), "close")
	}
	c.db = nil
	return nil
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	value, closer, err := c.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", errors.NewErrorDetails("Failed to get value from embedded store", string(errors.KVGetError), "get")
	}
	defer closer.Close()

	// value is only valid until closer.Close(), copy it out.
	out := make([]byte, len(value))
	copy(out, value)
	return string(out), nil
}

// Set writes a value under key. The expiration argument exists to satisfy the
// shared store contract with the Redis client and is ignored: pebble entries
// do not expire.
func (c *client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	var payload []byte
	switch v := value.(type) {
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		payload = fmt.Appendf(nil, "%v", v)
	}

	writeOpts := pebble.NoSync
	if c.config.SyncWrites {
		writeOpts = pebble.Sync
	}

	if err := c.db.Set([]byte(key), payload, writeOpts); err != nil {
		return errors.NewErrorDetails("Failed to set value in embedded store", string(errors.KVSetError), "set")
	}
	return nil
}

func (c *client) Del(ctx context.Context, keys ...string) (int64, error) {
	writeOpts := pebble.NoSync
	if c.config.SyncWrites {
		writeOpts = pebble.Sync
	}

	var deleted int64
	for _, key := range keys {
		if err := c.db.Delete([]byte(key), writeOpts); err != nil {
			return deleted, errors.NewErrorDetails("Failed to delete key from embedded store", string(errors.KVDelError), "del")
		}
		deleted++
	}
	return deleted, nil
}
