package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err // Return error if environment variable parsing fails
	}

	return nil
}

// Config holds the configuration for the application
type Config struct {
	Pair        string               `env:"PAIR" envDefault:"BTC/USD"` // Trading pair, e.g., BTC/USD
	StoreConfig `envPrefix:"STORE_"` // Snapshot store configuration
	RedisConfig `envPrefix:"REDIS_"` // Redis configuration
	KafkaConfig `envPrefix:"KAFKA_"` // Kafka configuration

	// SyncPersist keeps the snapshot write inside the book's exclusive scope so
	// the caller is only acknowledged after the write durably completed. When
	// false the snapshot is serialized under the scope but written after it is
	// released, trading durability lag for throughput.
	SyncPersist bool `env:"SYNC_PERSIST" envDefault:"true"`

	// SnapshotInterval is the period of the serve-mode snapshot resync ticker.
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
}

// StoreBackend selects which key-value store holds serialized snapshots.
type StoreBackend string

const (
	// BackendPebble uses the embedded pebble store.
	BackendPebble StoreBackend = "pebble"
	// BackendRedis uses a Redis server.
	BackendRedis StoreBackend = "redis"
)

// StoreConfig holds the configuration for the snapshot store backend.
type StoreConfig struct {
	Backend StoreBackend `env:"BACKEND" envDefault:"pebble"`
	Path    string       `env:"PATH" envDefault:"order_book.db"` // pebble database directory
}

// KafkaConfig holds the configuration for Kafka order intake and trade feed.
type KafkaConfig struct {
	OrderTopic string   `env:"ORDER_TOPIC" envDefault:"orders"`
	TradeTopic string   `env:"TRADE_TOPIC" envDefault:"trades"`
	GroupID    string   `env:"GROUP_ID" envDefault:"default_group"`
	Brokers    []string `env:"BROKER" envDefault:"localhost:9092"`
}

// RedisConfig holds the configuration for Redis client.
type RedisConfig struct {
	Addrs    string `env:"ADDRESS" envDefault:"localhost:6379"` // Comma-separated list of Redis addresses
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}
