package orderreaderv1

import "context"

// OrderReader defines the interface for consuming order requests from the feed.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderreaderv1_mock
type OrderReader interface {
	ReadRequest(ctx context.Context) (*OrderRequest, error)
	Close() error
}
