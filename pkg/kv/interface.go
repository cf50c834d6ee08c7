package kv

import (
	"context"
	"time"
)

// Client defines the interface for the embedded key-value store.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=kv_mock
type Client interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) (int64, error)
}
