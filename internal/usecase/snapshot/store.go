package snapshot

import (
	"context"
	"encoding/json"
	"time"

	snapshotv1 "github.com/muhammadchandra19/matchcore/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
)

// KV is the minimal key-value contract the store consumes. Both the Redis
// client and the embedded pebble client satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Store persists book snapshots for one instrument under its pair key.
type Store struct {
	pair   string
	logger *logger.Logger
	kv     KV
}

// NewStore creates a new snapshot store bound to the given KV backend and pair.
func NewStore(kv KV, pair string, logger *logger.Logger) *Store {
	return &Store{
		pair:   pair,
		kv:     kv,
		logger: logger,
	}
}

// Store serializes the snapshot and writes it under the pair key.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "pair",
			Value: s.pair,
		}, logger.Field{
			Key:   "action",
			Value: "marshal snapshot",
		})
		return errors.NewTracer(string(errors.SnapshotMarshalError)).Wrap(err)
	}

	if err := s.kv.Set(ctx, s.pair, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "pair",
			Value: s.pair,
		}, logger.Field{
			Key:   "action",
			Value: "store snapshot",
		})
		return errors.NewTracer(string(errors.SnapshotStoreError)).Wrap(err)
	}

	s.logger.DebugContext(ctx, "Snapshot stored", logger.Field{
		Key:   "pair",
		Value: s.pair,
	}, logger.Field{
		Key:   "activeOrders",
		Value: len(snapshot.ActiveOrders),
	}, logger.Field{
		Key:   "fulfilledOrders",
		Value: len(snapshot.FulfilledOrders),
	})
	return nil
}

// Load reads and parses the snapshot stored under the pair key. A missing
// snapshot returns nil without error.
func (s *Store) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := s.kv.Get(ctx, s.pair)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "pair",
			Value: s.pair,
		}, logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, errors.NewTracer(string(errors.SnapshotLoadError)).Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, "No snapshot found", logger.Field{
			Key:   "pair",
			Value: s.pair,
		})
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "pair",
			Value: s.pair,
		}, logger.Field{
			Key:   "action",
			Value: "unmarshal snapshot",
		})
		return nil, errors.NewTracer(string(errors.SnapshotUnmarshalError)).Wrap(err)
	}

	return &snapshot, nil
}
