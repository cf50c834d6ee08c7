package orderbookv1

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrWrongSide indicates an order was routed to the opposite side's collection.
	ErrWrongSide = errors.New("order routed to wrong side")
	// ErrDuplicateOrder indicates an id collision on insertion.
	ErrDuplicateOrder = errors.New("order id already exists")
	// ErrNotFound indicates a lookup referencing an unknown or already-closed order id.
	ErrNotFound = errors.New("order not found")
	// ErrAlreadyTerminal indicates a cancel or reduce attempted on a filled or cancelled order.
	ErrAlreadyTerminal = errors.New("order already in terminal state")
	// ErrInvalidReduction indicates a reduction exceeding the remaining quantity.
	// Correct matching never raises it; seeing it means a bug in the crossing pass.
	ErrInvalidReduction = errors.New("reduction exceeds remaining quantity")
	// ErrInvalidArgument indicates malformed external input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Side represents which side of the book an order belongs to.
type Side string

const (
	// Buy orders rest on the bid side.
	Buy Side = "buy"
	// Sell orders rest on the ask side.
	Sell Side = "sell"
)

// ParseSide converts an external side token into a Side.
func ParseSide(token string) (Side, error) {
	switch token {
	case string(Buy):
		return Buy, nil
	case string(Sell):
		return Sell, nil
	default:
		return "", fmt.Errorf("%w: unknown side token %q", ErrInvalidArgument, token)
	}
}

// Status represents the execution state of an order.
type Status string

const (
	// StatusActive means the order rests with its full quantity.
	StatusActive Status = "active"
	// StatusPartiallyFilled means the order rests with a reduced quantity.
	StatusPartiallyFilled Status = "partially_filled"
	// StatusFilled means the order's remaining quantity reached zero.
	StatusFilled Status = "filled"
	// StatusCancelled means the order was removed before it filled.
	StatusCancelled Status = "cancelled"
)

// Order represents a single order in the order book. ID, Side and Price are
// fixed at construction; only Remaining and Status change, and only through
// Reduce and Cancel.
type Order struct {
	ID        string `json:"id"`
	Side      Side   `json:"side"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Remaining int64  `json:"remaining"`
	Sequence  int64  `json:"sequence"` // insertion order, tie-break at equal price
	Status    Status `json:"status"`
}

// NewOrder creates a new active order with the given parameters.
// The sequence is assigned later by the engine, at insertion time.
func NewOrder(side Side, price, quantity int64) *Order {
	return &Order{
		ID:        ulid.Make().String(),
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Status:    StatusActive,
	}
}

// IsBid checks if the order rests on the bid side.
func (o *Order) IsBid() bool {
	return o.Side == Buy
}

// IsTerminal checks if the order reached a terminal status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}

// Reduce decrements the remaining quantity by the matched amount. Reducing to
// zero marks the order filled, any other reduction marks it partially filled.
func (o *Order) Reduce(by int64) error {
	if o.IsTerminal() {
		return fmt.Errorf("%w: order %s is %s", ErrAlreadyTerminal, o.ID, o.Status)
	}
	if by <= 0 || by > o.Remaining {
		return fmt.Errorf("%w: reduce %d with %d remaining on order %s", ErrInvalidReduction, by, o.Remaining, o.ID)
	}

	o.Remaining -= by
	if o.Remaining == 0 {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
	return nil
}

// Cancel marks the order cancelled. Filled and cancelled orders stay as they are.
func (o *Order) Cancel() error {
	if o.IsTerminal() {
		return fmt.Errorf("%w: order %s is %s", ErrAlreadyTerminal, o.ID, o.Status)
	}
	o.Status = StatusCancelled
	return nil
}
