package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// SnapshotMarshalError represents an error when serializing a book snapshot.
	SnapshotMarshalError ErrorCode = "snapshot_marshal_error"
	// SnapshotUnmarshalError represents an error when a persisted snapshot does not
	// parse into the expected schema.
	SnapshotUnmarshalError ErrorCode = "snapshot_unmarshal_error"
	// SnapshotStoreError represents an error when writing a snapshot to the store.
	SnapshotStoreError ErrorCode = "snapshot_store_error"
	// SnapshotLoadError represents an error when reading a snapshot from the store.
	SnapshotLoadError ErrorCode = "snapshot_load_error"
	// PersistenceFailedError signals that an in-memory mutation succeeded but the
	// snapshot write that followed it did not. The caller may retry the write.
	PersistenceFailedError ErrorCode = "persistence_failed"

	// TradePublishError represents an error when publishing a trade event.
	TradePublishError ErrorCode = "trade_publish_error"
	// OrderReadError represents an error when reading an order request from the feed.
	OrderReadError ErrorCode = "order_read_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"

	// KVConfigError represents an error when the embedded store configuration is invalid.
	KVConfigError ErrorCode = "kv_config_error"
	// KVOpenError represents an error when opening the embedded store.
	KVOpenError ErrorCode = "kv_open_error"
	// KVCloseError represents an error when closing the embedded store.
	KVCloseError ErrorCode = "kv_close_error"
	// KVGetError represents an error when getting a value from the embedded store.
	KVGetError ErrorCode = "kv_get_error"
	// KVSetError represents an error when setting a value in the embedded store.
	KVSetError ErrorCode = "kv_set_error"
	// KVDelError represents an error when deleting a value from the embedded store.
	KVDelError ErrorCode = "kv_del_error"
)
