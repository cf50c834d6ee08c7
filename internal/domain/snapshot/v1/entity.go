package snapshotv1

import orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"

// Snapshot represents the full serialized book state for one instrument at a
// specific point in time. Active orders are re-inserted on reload preserving
// their original sequence, fulfilled orders only feed the closed log.
type Snapshot struct {
	ActiveOrders    []BookOrder `json:"activeOrders"`
	FulfilledOrders []BookOrder `json:"fulfilledOrders"`
	OrderSequence   int64       `json:"orderSequence"`
	TradeSequence   int64       `json:"tradeSequence"`
}

// BookOrder represents an order in the snapshot with its full attribute set.
type BookOrder struct {
	OrderID   string             `json:"orderID"`
	Side      orderbookv1.Side   `json:"side"`
	Price     int64              `json:"price"`
	Quantity  int64              `json:"quantity"`
	Remaining int64              `json:"remaining"`
	Sequence  int64              `json:"sequence"`
	Status    orderbookv1.Status `json:"status"`
}

// FromOrder converts a book order into its snapshot representation.
func FromOrder(o *orderbookv1.Order) BookOrder {
	return BookOrder{
		OrderID:   o.ID,
		Side:      o.Side,
		Price:     o.Price,
		Quantity:  o.Quantity,
		Remaining: o.Remaining,
		Sequence:  o.Sequence,
		Status:    o.Status,
	}
}

// ToOrder converts a snapshot entry back into a book order.
func (b BookOrder) ToOrder() *orderbookv1.Order {
	return &orderbookv1.Order{
		ID:        b.OrderID,
		Side:      b.Side,
		Price:     b.Price,
		Quantity:  b.Quantity,
		Remaining: b.Remaining,
		Sequence:  b.Sequence,
		Status:    b.Status,
	}
}
