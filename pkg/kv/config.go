package kv

// Config holds the configuration for the embedded key-value store.
type Config struct {
	// Path is the directory holding the pebble database files.
	Path string `env:"PATH" envDefault:"order_book.db"`

	// SyncWrites forces every write through to stable storage before returning.
	SyncWrites bool `env:"SYNC_WRITES" envDefault:"true"`
}

// DefaultConfig returns a default configuration for the embedded store.
func DefaultConfig() *Config {
	return &Config{
		Path:       "order_book.db",
		SyncWrites: true,
	}
}
