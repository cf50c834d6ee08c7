package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matchcore/internal/domain/snapshot/v1"
	pkgerrors "github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKV is an in-memory KV backend with injectable failures.
type fakeKV struct {
	data    map[string]string
	failGet bool
	failSet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	if f.failGet {
		return "", errors.New("backend unreachable")
	}
	return f.data[key], nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if f.failSet {
		return errors.New("backend unreachable")
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return nil
}

func setupTestStore(t *testing.T) (*Store, *fakeKV) {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	kv := newFakeKV()
	return NewStore(kv, "BTC/USD", log), kv
}

func testSnapshot() *snapshotv1.Snapshot {
	return &snapshotv1.Snapshot{
		ActiveOrders: []snapshotv1.BookOrder{
			{
				OrderID:   "order-1",
				Side:      orderbookv1.Buy,
				Price:     100,
				Quantity:  5,
				Remaining: 5,
				Sequence:  1,
				Status:    orderbookv1.StatusActive,
			},
		},
		FulfilledOrders: []snapshotv1.BookOrder{
			{
				OrderID:   "order-2",
				Side:      orderbookv1.Sell,
				Price:     99,
				Quantity:  2,
				Remaining: 0,
				Sequence:  2,
				Status:    orderbookv1.StatusFilled,
			},
		},
		OrderSequence: 2,
		TradeSequence: 1,
	}
}

func TestStore_Roundtrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, testSnapshot()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, testSnapshot(), loaded)
}

func TestStore_Load(t *testing.T) {
	t.Run("missing snapshot returns nil", func(t *testing.T) {
		store, _ := setupTestStore(t)

		loaded, err := store.Load(context.Background())

		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("backend failure", func(t *testing.T) {
		store, kv := setupTestStore(t)
		kv.failGet = true

		_, err := store.Load(context.Background())

		require.Error(t, err)
		var tracer *pkgerrors.ErrorTracer
		require.ErrorAs(t, err, &tracer)
		assert.Equal(t, string(pkgerrors.SnapshotLoadError), tracer.Message)
	})

	t.Run("malformed payload", func(t *testing.T) {
		store, kv := setupTestStore(t)
		kv.data["BTC/USD"] = "{not json"

		_, err := store.Load(context.Background())

		require.Error(t, err)
		var tracer *pkgerrors.ErrorTracer
		require.ErrorAs(t, err, &tracer)
		assert.Equal(t, string(pkgerrors.SnapshotUnmarshalError), tracer.Message)
	})
}

func TestStore_Store(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		store, kv := setupTestStore(t)
		kv.failSet = true

		err := store.Store(context.Background(), testSnapshot())

		require.Error(t, err)
		var tracer *pkgerrors.ErrorTracer
		require.ErrorAs(t, err, &tracer)
		assert.Equal(t, string(pkgerrors.SnapshotStoreError), tracer.Message)
	})

	t.Run("pairs do not collide", func(t *testing.T) {
		log, err := logger.NewLogger()
		require.NoError(t, err)

		kv := newFakeKV()
		btc := NewStore(kv, "BTC/USD", log)
		eth := NewStore(kv, "ETH/USD", log)
		ctx := context.Background()

		require.NoError(t, btc.Store(ctx, testSnapshot()))

		loaded, err := eth.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}
