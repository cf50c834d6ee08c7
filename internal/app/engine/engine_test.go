package engine

import (
	"context"
	"errors"
	"testing"

	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matchcore/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/matchcore/internal/usecase/orderbook"
	pkgerrors "github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps the last stored snapshot in memory and can be switched to
// fail reads or writes.
type fakeStore struct {
	snapshot   *snapshotv1.Snapshot
	storeCalls int
	failStore  bool
	failLoad   bool
}

func (f *fakeStore) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	f.storeCalls++
	if f.failStore {
		return errors.New("storage unavailable")
	}
	f.snapshot = snapshot
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (*snapshotv1.Snapshot, error) {
	if f.failLoad {
		return nil, errors.New("snapshot does not parse")
	}
	return f.snapshot, nil
}

type testFixture struct {
	store  *fakeStore
	engine *Engine
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	store := &fakeStore{}
	engine, err := NewEngine(context.Background(), "BTC/USD", orderbook.NewBook(), store, log)
	require.NoError(t, err)

	return &testFixture{
		store:  store,
		engine: engine,
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("empty store yields empty book", func(t *testing.T) {
		f := setupTestFixture(t)

		assert.Empty(t, f.engine.ActiveOrders())
		assert.Empty(t, f.engine.ClosedOrders())
	})

	t.Run("load failure is a startup failure", func(t *testing.T) {
		log, err := logger.NewLogger()
		require.NoError(t, err)

		store := &fakeStore{failLoad: true}
		_, err = NewEngine(context.Background(), "BTC/USD", orderbook.NewBook(), store, log)

		assert.Error(t, err)
	})
}

func TestEngine_Submit_Validation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		side     orderbookv1.Side
		price    int64
		quantity int64
	}{
		{name: "zero price", side: orderbookv1.Buy, price: 0, quantity: 1},
		{name: "negative price", side: orderbookv1.Buy, price: -5, quantity: 1},
		{name: "zero quantity", side: orderbookv1.Sell, price: 10, quantity: 0},
		{name: "negative quantity", side: orderbookv1.Sell, price: 10, quantity: -1},
		{name: "unknown side", side: orderbookv1.Side("hold"), price: 10, quantity: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.engine.Submit(ctx, tc.side, tc.price, tc.quantity)

			assert.ErrorIs(t, err, orderbookv1.ErrInvalidArgument)
			assert.Empty(t, f.engine.ActiveOrders())
			assert.Zero(t, f.store.storeCalls)
		})
	}
}

func TestEngine_Submit_RestingOrder(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	order, trades, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 5)

	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, orderbookv1.StatusActive, order.Status)
	assert.Equal(t, int64(1), order.Sequence)
	assert.Equal(t, 1, f.store.storeCalls)

	active := f.engine.ActiveOrders()
	require.Len(t, active, 1)
	assert.Equal(t, order.ID, active[0].ID)
}

// Asks at 4, 3, 9, then buys at 5, 4, 3. The buys execute at the resting
// ask prices 3 and 4, the ask at 9 and the buy at 3 stay on the book.
func TestEngine_Submit_CrossingSequence(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, _, err := f.engine.Submit(ctx, orderbookv1.Sell, 4, 1)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Sell, 3, 1)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Sell, 9, 1)
	require.NoError(t, err)

	buy1, trades1, err := f.engine.Submit(ctx, orderbookv1.Buy, 5, 1)
	require.NoError(t, err)
	require.Len(t, trades1, 1)
	assert.Equal(t, int64(3), trades1[0].Price) // resting ask at 3 is maker
	assert.Equal(t, orderbookv1.StatusFilled, buy1.Status)

	buy2, trades2, err := f.engine.Submit(ctx, orderbookv1.Buy, 4, 1)
	require.NoError(t, err)
	require.Len(t, trades2, 1)
	assert.Equal(t, int64(4), trades2[0].Price)
	assert.Equal(t, orderbookv1.StatusFilled, buy2.Status)

	buy3, trades3, err := f.engine.Submit(ctx, orderbookv1.Buy, 3, 1)
	require.NoError(t, err)
	assert.Empty(t, trades3)
	assert.Equal(t, orderbookv1.StatusActive, buy3.Status)

	// Filled buys at limit prices 5 and 4, filled sells at 3 and 4.
	var filledBuys, filledSells []int64
	for _, order := range f.engine.ClosedOrders() {
		if order.Status != orderbookv1.StatusFilled {
			continue
		}
		if order.Side == orderbookv1.Buy {
			filledBuys = append(filledBuys, order.Price)
		} else {
			filledSells = append(filledSells, order.Price)
		}
	}
	assert.Equal(t, []int64{5, 4}, filledBuys)
	assert.Equal(t, []int64{3, 4}, filledSells)

	// Ask at 9 and buy at 3 remain.
	active := f.engine.ActiveOrders()
	require.Len(t, active, 2)
	assert.Equal(t, int64(3), active[0].Price)
	assert.Equal(t, int64(9), active[1].Price)
}

// A resting buy is maker, so the trade executes at its limit price.
func TestEngine_Submit_PartialFill(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	buy, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 10, 5)
	require.NoError(t, err)

	sell, trades, err := f.engine.Submit(ctx, orderbookv1.Sell, 9, 3)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, int64(10), trades[0].Price)
	assert.Equal(t, int64(3), trades[0].Quantity)
	assert.Equal(t, buy.ID, trades[0].MakerOrderID)
	assert.Equal(t, sell.ID, trades[0].TakerOrderID)

	assert.Equal(t, orderbookv1.StatusPartiallyFilled, buy.Status)
	assert.Equal(t, int64(2), buy.Remaining)
	assert.Equal(t, orderbookv1.StatusFilled, sell.Status)
}

// Two equal-price buys: the earlier one is consumed fully before the later
// one is touched.
func TestEngine_Submit_TimePriority(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	first, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 2)
	require.NoError(t, err)
	second, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 2)
	require.NoError(t, err)

	_, trades, err := f.engine.Submit(ctx, orderbookv1.Sell, 100, 3)
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, first.ID, trades[0].MakerOrderID)
	assert.Equal(t, int64(2), trades[0].Quantity)
	assert.Equal(t, second.ID, trades[1].MakerOrderID)
	assert.Equal(t, int64(1), trades[1].Quantity)

	assert.Equal(t, orderbookv1.StatusFilled, first.Status)
	assert.Equal(t, orderbookv1.StatusPartiallyFilled, second.Status)
	assert.Equal(t, int64(1), second.Remaining)
}

// After every settled submission either a side is empty or the best bid is
// strictly below the best ask.
func TestEngine_NoRestingCross(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	submissions := []struct {
		side     orderbookv1.Side
		price    int64
		quantity int64
	}{
		{orderbookv1.Sell, 12, 4},
		{orderbookv1.Buy, 10, 2},
		{orderbookv1.Buy, 13, 3},
		{orderbookv1.Sell, 9, 6},
		{orderbookv1.Buy, 11, 1},
		{orderbookv1.Sell, 11, 2},
	}

	for _, s := range submissions {
		_, _, err := f.engine.Submit(ctx, s.side, s.price, s.quantity)
		require.NoError(t, err)

		var bestBid, bestAsk int64
		hasBid, hasAsk := false, false
		for _, order := range f.engine.ActiveOrders() {
			if order.Side == orderbookv1.Buy {
				if !hasBid || order.Price > bestBid {
					bestBid = order.Price
				}
				hasBid = true
			} else {
				if !hasAsk || order.Price < bestAsk {
					bestAsk = order.Price
				}
				hasAsk = true
			}
		}
		if hasBid && hasAsk {
			assert.Less(t, bestBid, bestAsk)
		}
	}
}

// The matched quantity of one submission never exceeds the incoming order's
// quantity and no remaining quantity goes negative.
func TestEngine_QuantityConservation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, _, err := f.engine.Submit(ctx, orderbookv1.Sell, 10, 3)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Sell, 11, 4)
	require.NoError(t, err)

	order, trades, err := f.engine.Submit(ctx, orderbookv1.Buy, 11, 5)
	require.NoError(t, err)

	var matched int64
	for _, trade := range trades {
		matched += trade.Quantity
	}
	assert.Equal(t, int64(5), matched)
	assert.Equal(t, int64(0), order.Remaining)

	for _, o := range f.engine.ActiveOrders() {
		assert.Positive(t, o.Remaining)
	}
	for _, o := range f.engine.ClosedOrders() {
		assert.GreaterOrEqual(t, o.Remaining, int64(0))
	}
}

func TestEngine_Cancel(t *testing.T) {
	t.Run("cancel resting order", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()

		order, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 5)
		require.NoError(t, err)

		trades, err := f.engine.Cancel(ctx, order.ID)

		require.NoError(t, err)
		assert.Empty(t, trades)
		assert.Empty(t, f.engine.ActiveOrders())
		closed := f.engine.ClosedOrders()
		require.Len(t, closed, 1)
		assert.Equal(t, orderbookv1.StatusCancelled, closed[0].Status)
	})

	t.Run("cancel unknown id leaves book unchanged", func(t *testing.T) {
		f := setupTestFixture(t)
		ctx := context.Background()

		_, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 5)
		require.NoError(t, err)
		storeCalls := f.store.storeCalls

		_, err = f.engine.Cancel(ctx, "no-such-order")

		assert.ErrorIs(t, err, orderbookv1.ErrNotFound)
		assert.Len(t, f.engine.ActiveOrders(), 1)
		assert.Equal(t, storeCalls, f.store.storeCalls)
	})
}

func TestEngine_PersistenceFailure(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.store.failStore = true
	order, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 5)

	// The in-memory mutation is retained, the caller is told to retry.
	require.Error(t, err)
	var tracer *pkgerrors.ErrorTracer
	require.ErrorAs(t, err, &tracer)
	assert.Equal(t, string(pkgerrors.PersistenceFailedError), tracer.Message)

	require.NotNil(t, order)
	assert.Len(t, f.engine.ActiveOrders(), 1)

	// A later write can pick the state back up.
	f.store.failStore = false
	require.NoError(t, f.engine.Persist(ctx))
	require.NotNil(t, f.store.snapshot)
	assert.Len(t, f.store.snapshot.ActiveOrders, 1)
}

func TestEngine_ReloadPreservesPriority(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, _, err := f.engine.Submit(ctx, orderbookv1.Buy, 100, 2)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Buy, 100, 3)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Sell, 120, 4)
	require.NoError(t, err)
	_, _, err = f.engine.Submit(ctx, orderbookv1.Sell, 110, 1)
	require.NoError(t, err)

	before := f.engine.ActiveOrders()

	log, err := logger.NewLogger()
	require.NoError(t, err)
	reloaded, err := NewEngine(ctx, "BTC/USD", orderbook.NewBook(), f.store, log)
	require.NoError(t, err)

	after := reloaded.ActiveOrders()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].Price, after[i].Price)
		assert.Equal(t, before[i].Remaining, after[i].Remaining)
		assert.Equal(t, before[i].Sequence, after[i].Sequence)
	}

	// New submissions keep sequencing above the persisted history.
	order, _, err := reloaded.Submit(ctx, orderbookv1.Buy, 90, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), order.Sequence)
}

func TestEngine_AsyncPersistPolicy(t *testing.T) {
	log, err := logger.NewLogger()
	require.NoError(t, err)

	store := &fakeStore{}
	opts := DefaultEngineOptions()
	opts.SyncPersist = false

	engine, err := NewEngineWithOptions(context.Background(), "BTC/USD", orderbook.NewBook(), store, log, opts)
	require.NoError(t, err)

	_, _, err = engine.Submit(context.Background(), orderbookv1.Buy, 100, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, store.storeCalls)
	require.NotNil(t, store.snapshot)
	assert.Len(t, store.snapshot.ActiveOrders, 1)
}
