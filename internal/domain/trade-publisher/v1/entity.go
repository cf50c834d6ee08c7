package tradepublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
)

// TradeEvent is the wire payload published for every executed trade.
type TradeEvent struct {
	Pair         string `json:"pair"`
	MakerOrderID string `json:"makerOrderID"`
	TakerOrderID string `json:"takerOrderID"`
	Price        int64  `json:"price"`
	Quantity     int64  `json:"quantity"`
	Sequence     int64  `json:"sequence"`
	ExecutedAt   int64  `json:"executedAt"`
}

// FromTrade builds a TradeEvent for the given pair from an executed trade.
func FromTrade(pair string, trade orderbookv1.Trade) *TradeEvent {
	return &TradeEvent{
		Pair:         pair,
		MakerOrderID: trade.MakerOrderID,
		TakerOrderID: trade.TakerOrderID,
		Price:        trade.Price,
		Quantity:     trade.Quantity,
		Sequence:     trade.Sequence,
		ExecutedAt:   time.Now().UnixNano(),
	}
}

// ToBytes serializes the event for publishing.
func (e *TradeEvent) ToBytes() []byte {
	buf, _ := json.Marshal(e)
	return buf
}
