package engine

import (
	"context"
	"fmt"
	"sync"

	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matchcore/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/matchcore/internal/usecase/orderbook"
	"github.com/muhammadchandra19/matchcore/pkg/errors"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
)

// Engine drives insertion and the crossing algorithm for one instrument's
// order book. Every mutation, the crossing pass it triggers, and every
// consistent read run under a single mutex, so operations on the same pair
// are totally ordered and sequence numbers assigned under that scope give a
// replayable history. Books for different pairs share nothing and proceed in
// parallel.
type Engine struct {
	pair          string
	book          *orderbook.Book
	snapshotStore snapshotv1.Store
	logger        *logger.Logger
	opts          *Options

	mu            sync.Mutex
	orderSequence int64
	tradeSequence int64
}

// NewEngine creates an engine with default options and restores the book
// from the persisted snapshot, if one exists.
func NewEngine(
	ctx context.Context,
	pair string,
	book *orderbook.Book,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
) (*Engine, error) {
	return NewEngineWithOptions(ctx, pair, book, snapshotStore, log, DefaultEngineOptions())
}

// NewEngineWithOptions creates an engine with custom options. A missing
// snapshot yields an empty book; a snapshot that fails to load or parse is a
// startup failure.
func NewEngineWithOptions(
	ctx context.Context,
	pair string,
	book *orderbook.Book,
	snapshotStore snapshotv1.Store,
	log *logger.Logger,
	opts *Options,
) (*Engine, error) {
	e := &Engine{
		pair:          pair,
		book:          book,
		snapshotStore: snapshotStore,
		logger:        log,
		opts:          opts,
	}

	if err := e.loadSnapshot(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// Submit validates the order parameters, inserts the order at its
// price-time priority position, runs the crossing pass and persists the
// updated book. It returns the order's final in-memory state and the trades
// this submission generated.
//
// On a persistence failure the in-memory mutation is retained and the error
// carries the persistence_failed code so the caller can retry the write;
// executed trades are final and never rolled back.
func (e *Engine) Submit(ctx context.Context, side orderbookv1.Side, price, quantity int64) (*orderbookv1.Order, []orderbookv1.Trade, error) {
	if price <= 0 {
		return nil, nil, fmt.Errorf("%w: price must be positive, got %d", orderbookv1.ErrInvalidArgument, price)
	}
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: quantity must be positive, got %d", orderbookv1.ErrInvalidArgument, quantity)
	}
	if _, err := orderbookv1.ParseSide(string(side)); err != nil {
		return nil, nil, err
	}

	e.mu.Lock()

	order := orderbookv1.NewOrder(side, price, quantity)
	e.orderSequence++
	order.Sequence = e.orderSequence

	if err := e.book.Insert(order); err != nil {
		e.mu.Unlock()
		return nil, nil, err
	}

	trades, err := e.cross(ctx)
	if err != nil {
		e.mu.Unlock()
		return order, trades, err
	}

	e.logger.DebugContext(ctx, "Order submitted",
		logger.Field{Key: "pair", Value: e.pair},
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "side", Value: order.Side},
		logger.Field{Key: "price", Value: order.Price},
		logger.Field{Key: "quantity", Value: order.Quantity},
		logger.Field{Key: "trades", Value: len(trades)},
	)

	return order, trades, e.persistUnlock(ctx)
}

// Cancel removes a resting order and persists the updated book. The crossing
// pass re-runs afterwards so a top-of-book change can never leave the book
// resting crossed; any trades that produces are returned.
func (e *Engine) Cancel(ctx context.Context, orderID string) ([]orderbookv1.Trade, error) {
	e.mu.Lock()

	order, err := e.book.Cancel(orderID)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}

	trades, err := e.cross(ctx)
	if err != nil {
		e.mu.Unlock()
		return trades, err
	}

	e.logger.DebugContext(ctx, "Order cancelled",
		logger.Field{Key: "pair", Value: e.pair},
		logger.Field{Key: "orderID", Value: order.ID},
		logger.Field{Key: "remaining", Value: order.Remaining},
	)

	return trades, e.persistUnlock(ctx)
}

// cross repeatedly matches the tops of the two sides while they cross. The
// maker is the earlier-sequence order of the crossing pair and sets the
// trade price; the matched quantity is the smaller remaining quantity. Filled
// orders settle into the closed log and the loop re-evaluates the new top of
// book until no crossing remains or one side is empty.
//
// Callers must hold e.mu.
func (e *Engine) cross(ctx context.Context) ([]orderbookv1.Trade, error) {
	var trades []orderbookv1.Trade

	for {
		bestBid, bidOk := e.book.BestBid()
		bestAsk, askOk := e.book.BestAsk()
		if !bidOk || !askOk || bestBid.Price < bestAsk.Price {
			break
		}

		maker, taker := bestBid, bestAsk
		if bestAsk.Sequence < bestBid.Sequence {
			maker, taker = bestAsk, bestBid
		}

		quantity := min(bestBid.Remaining, bestAsk.Remaining)

		// Reduce cannot fail here: quantity is bounded by both remaining
		// quantities and both orders rest non-terminal. A failure means the
		// crossing invariant is broken.
		if err := bestBid.Reduce(quantity); err != nil {
			return trades, err
		}
		if err := bestAsk.Reduce(quantity); err != nil {
			return trades, err
		}

		e.tradeSequence++
		trade := orderbookv1.Trade{
			MakerOrderID: maker.ID,
			TakerOrderID: taker.ID,
			Price:        maker.Price,
			Quantity:     quantity,
			Sequence:     e.tradeSequence,
		}
		trades = append(trades, trade)

		e.logger.DebugContext(ctx, "Trade executed",
			logger.Field{Key: "pair", Value: e.pair},
			logger.Field{Key: "makerOrderID", Value: trade.MakerOrderID},
			logger.Field{Key: "takerOrderID", Value: trade.TakerOrderID},
			logger.Field{Key: "price", Value: trade.Price},
			logger.Field{Key: "quantity", Value: trade.Quantity},
			logger.Field{Key: "tradeSequence", Value: trade.Sequence},
		)

		if bestBid.Status == orderbookv1.StatusFilled {
			if err := e.book.Settle(bestBid); err != nil {
				return trades, err
			}
		}
		if bestAsk.Status == orderbookv1.StatusFilled {
			if err := e.book.Settle(bestAsk); err != nil {
				return trades, err
			}
		}
	}

	return trades, nil
}

// persistUnlock writes the current snapshot according to the durability
// policy and releases the book lock. With SyncPersist the write happens
// before the lock is released; otherwise the snapshot is captured under the
// lock and written after, so the book is not held across storage latency.
//
// Callers must hold e.mu; it is released on return.
func (e *Engine) persistUnlock(ctx context.Context) error {
	snapshot := e.snapshotLocked()

	var err error
	if e.opts.SyncPersist {
		err = e.snapshotStore.Store(ctx, snapshot)
		e.mu.Unlock()
	} else {
		e.mu.Unlock()
		err = e.snapshotStore.Store(ctx, snapshot)
	}

	if err != nil {
		return errors.NewTracer(string(errors.PersistenceFailedError)).Wrap(err)
	}
	return nil
}

// Persist writes the current snapshot outside any mutation, for periodic
// resync in serve mode.
func (e *Engine) Persist(ctx context.Context) error {
	e.mu.Lock()
	return e.persistUnlock(ctx)
}

func (e *Engine) snapshotLocked() *snapshotv1.Snapshot {
	snapshot := e.book.Snapshot()
	snapshot.OrderSequence = e.orderSequence
	snapshot.TradeSequence = e.tradeSequence
	return snapshot
}

// ActiveOrders returns a consistent copy of the resting orders, bids first,
// each side in priority order.
func (e *Engine) ActiveOrders() []orderbookv1.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return copyOrders(e.book.ActiveOrders())
}

// ClosedOrders returns a consistent copy of the filled and cancelled orders.
func (e *Engine) ClosedOrders() []orderbookv1.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return copyOrders(e.book.ClosedOrders())
}

func copyOrders(orders []*orderbookv1.Order) []orderbookv1.Order {
	out := make([]orderbookv1.Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, *order)
	}
	return out
}

// loadSnapshot restores the book and sequence counters from the persisted
// snapshot. Counters resume above the highest sequence seen so replayed
// priority and new assignments never collide.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	snapshot, err := e.snapshotStore.Load(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	if err := e.book.Restore(snapshot); err != nil {
		return err
	}

	e.orderSequence = snapshot.OrderSequence
	e.tradeSequence = snapshot.TradeSequence
	for _, bookOrder := range snapshot.ActiveOrders {
		e.orderSequence = max(e.orderSequence, bookOrder.Sequence)
	}
	for _, bookOrder := range snapshot.FulfilledOrders {
		e.orderSequence = max(e.orderSequence, bookOrder.Sequence)
	}

	e.logger.InfoContext(ctx, "Order book restored from snapshot",
		logger.Field{Key: "pair", Value: e.pair},
		logger.Field{Key: "activeOrders", Value: len(snapshot.ActiveOrders)},
		logger.Field{Key: "fulfilledOrders", Value: len(snapshot.FulfilledOrders)},
		logger.Field{Key: "orderSequence", Value: e.orderSequence},
	)

	return nil
}
