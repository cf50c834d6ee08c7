package tradepublisherv1

import "context"

// Publisher defines the interface for publishing executed trades.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tradepublisherv1_mock
type Publisher interface {
	PublishTradeEvent(ctx context.Context, event *TradeEvent) error
	Close() error
}
