package orderbook

import (
	"fmt"

	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matchcore/internal/domain/snapshot/v1"
	"github.com/tidwall/btree"
)

// Book holds the two price-time ordered sides plus the closed log for one
// instrument. It is not safe for concurrent use: the matching engine owns the
// book and serializes every access under its per-instrument exclusive scope,
// so a half-matched state is never observable from outside.
type Book struct {
	bids *btree.BTreeG[*orderbookv1.Order]
	asks *btree.BTreeG[*orderbookv1.Order]

	resting   map[string]*orderbookv1.Order // orderID -> resting order
	closed    []*orderbookv1.Order          // filled and cancelled orders, in settle order
	closedIDs map[string]struct{}
}

// NewBook creates an empty order book. Bids sort price-descending, asks
// price-ascending, both breaking ties by ascending sequence so the earlier
// order at a price always sits in front.
func NewBook() *Book {
	bids := btree.NewBTreeG(func(a, b *orderbookv1.Order) bool {
		if a.Price != b.Price {
			return a.Price > b.Price
		}
		return a.Sequence < b.Sequence
	})
	asks := btree.NewBTreeG(func(a, b *orderbookv1.Order) bool {
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.Sequence < b.Sequence
	})

	return &Book{
		bids:      bids,
		asks:      asks,
		resting:   make(map[string]*orderbookv1.Order),
		closedIDs: make(map[string]struct{}),
	}
}

// Insert routes the order to its side by (price, sequence) priority.
func (b *Book) Insert(order *orderbookv1.Order) error {
	switch order.Side {
	case orderbookv1.Buy:
		return b.InsertBid(order)
	case orderbookv1.Sell:
		return b.InsertAsk(order)
	default:
		return fmt.Errorf("%w: unknown side %q on order %s", orderbookv1.ErrWrongSide, order.Side, order.ID)
	}
}

// InsertBid places a buy order on the bid side.
func (b *Book) InsertBid(order *orderbookv1.Order) error {
	if !order.IsBid() {
		return fmt.Errorf("%w: %s order %s routed to bid side", orderbookv1.ErrWrongSide, order.Side, order.ID)
	}
	return b.insert(b.bids, order)
}

// InsertAsk places a sell order on the ask side.
func (b *Book) InsertAsk(order *orderbookv1.Order) error {
	if order.IsBid() {
		return fmt.Errorf("%w: %s order %s routed to ask side", orderbookv1.ErrWrongSide, order.Side, order.ID)
	}
	return b.insert(b.asks, order)
}

func (b *Book) insert(side *btree.BTreeG[*orderbookv1.Order], order *orderbookv1.Order) error {
	if order.IsTerminal() || order.Remaining <= 0 {
		return fmt.Errorf("%w: order %s has status %s with %d remaining",
			orderbookv1.ErrInvalidArgument, order.ID, order.Status, order.Remaining)
	}
	if _, exists := b.resting[order.ID]; exists {
		return fmt.Errorf("%w: %s", orderbookv1.ErrDuplicateOrder, order.ID)
	}
	if _, exists := b.closedIDs[order.ID]; exists {
		return fmt.Errorf("%w: %s", orderbookv1.ErrDuplicateOrder, order.ID)
	}

	side.Set(order)
	b.resting[order.ID] = order
	return nil
}

// BestBid returns the highest-priority resting buy order, if any.
func (b *Book) BestBid() (*orderbookv1.Order, bool) {
	return b.bids.Min()
}

// BestAsk returns the highest-priority resting sell order, if any.
func (b *Book) BestAsk() (*orderbookv1.Order, bool) {
	return b.asks.Min()
}

// Cancel removes the order from its side and appends it, cancelled, to the
// closed log.
func (b *Book) Cancel(orderID string) (*orderbookv1.Order, error) {
	order, exists := b.resting[orderID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", orderbookv1.ErrNotFound, orderID)
	}

	if err := order.Cancel(); err != nil {
		return nil, err
	}

	b.remove(order)
	return order, nil
}

// Settle removes a filled order from its side and appends it to the closed
// log. The crossing pass calls it whenever an order's remaining quantity
// reaches zero.
func (b *Book) Settle(order *orderbookv1.Order) error {
	if _, exists := b.resting[order.ID]; !exists {
		return fmt.Errorf("%w: %s", orderbookv1.ErrNotFound, order.ID)
	}
	if order.Status != orderbookv1.StatusFilled {
		return fmt.Errorf("%w: order %s settled with status %s",
			orderbookv1.ErrInvalidArgument, order.ID, order.Status)
	}

	b.remove(order)
	return nil
}

func (b *Book) remove(order *orderbookv1.Order) {
	if order.IsBid() {
		b.bids.Delete(order)
	} else {
		b.asks.Delete(order)
	}
	delete(b.resting, order.ID)
	b.closed = append(b.closed, order)
	b.closedIDs[order.ID] = struct{}{}
}

// Bids returns the resting buy orders in priority order.
func (b *Book) Bids() []*orderbookv1.Order {
	orders := make([]*orderbookv1.Order, 0, b.bids.Len())
	b.bids.Scan(func(order *orderbookv1.Order) bool {
		orders = append(orders, order)
		return true
	})
	return orders
}

// Asks returns the resting sell orders in priority order.
func (b *Book) Asks() []*orderbookv1.Order {
	orders := make([]*orderbookv1.Order, 0, b.asks.Len())
	b.asks.Scan(func(order *orderbookv1.Order) bool {
		orders = append(orders, order)
		return true
	})
	return orders
}

// ActiveOrders returns all resting orders, bids first, each side in priority
// order.
func (b *Book) ActiveOrders() []*orderbookv1.Order {
	return append(b.Bids(), b.Asks()...)
}

// ClosedOrders returns the filled and cancelled orders in settle order.
func (b *Book) ClosedOrders() []*orderbookv1.Order {
	orders := make([]*orderbookv1.Order, len(b.closed))
	copy(orders, b.closed)
	return orders
}

// Depth returns the number of resting orders on each side.
func (b *Book) Depth() (bids, asks int) {
	return b.bids.Len(), b.asks.Len()
}

// Snapshot captures the current book state. Sequence counters are filled in
// by the engine.
func (b *Book) Snapshot() *snapshotv1.Snapshot {
	snapshot := &snapshotv1.Snapshot{
		ActiveOrders:    make([]snapshotv1.BookOrder, 0, len(b.resting)),
		FulfilledOrders: make([]snapshotv1.BookOrder, 0, len(b.closed)),
	}

	for _, order := range b.ActiveOrders() {
		snapshot.ActiveOrders = append(snapshot.ActiveOrders, snapshotv1.FromOrder(order))
	}
	for _, order := range b.closed {
		snapshot.FulfilledOrders = append(snapshot.FulfilledOrders, snapshotv1.FromOrder(order))
	}

	return snapshot
}

// Restore replaces the book state with the snapshot's. Active orders are
// re-inserted preserving their persisted sequence so priority after a restart
// matches the priority before it; fulfilled orders only feed the closed log.
func (b *Book) Restore(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot cannot be nil", orderbookv1.ErrInvalidArgument)
	}

	b.bids.Clear()
	b.asks.Clear()
	b.resting = make(map[string]*orderbookv1.Order)
	b.closed = nil
	b.closedIDs = make(map[string]struct{})

	for _, bookOrder := range snapshot.FulfilledOrders {
		order := bookOrder.ToOrder()
		b.closed = append(b.closed, order)
		b.closedIDs[order.ID] = struct{}{}
	}

	for _, bookOrder := range snapshot.ActiveOrders {
		order := bookOrder.ToOrder()
		if err := b.Insert(order); err != nil {
			return fmt.Errorf("failed to restore order %s: %w", bookOrder.OrderID, err)
		}
	}

	return nil
}
