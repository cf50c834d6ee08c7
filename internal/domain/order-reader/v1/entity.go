package orderreaderv1

import orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"

// RequestType represents the kind of order request read from the feed.
type RequestType string

const (
	// RequestTypeSubmit places a new limit order.
	RequestTypeSubmit RequestType = "submit"
	// RequestTypeCancel cancels a resting order.
	RequestTypeCancel RequestType = "cancel"
)

// OrderRequest represents a request to mutate the order book.
type OrderRequest struct {
	Type     RequestType      `json:"type"`
	Side     orderbookv1.Side `json:"side"`
	Price    int64            `json:"price"`
	Quantity int64            `json:"quantity"`
	OrderID  string           `json:"orderID"` // cancel target
	Offset   int64            `json:"-"`       // position in the stream
}
