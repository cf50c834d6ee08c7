package engine

import (
	"context"
	"sync"
	"time"

	orderreaderv1 "github.com/muhammadchandra19/matchcore/internal/domain/order-reader/v1"
	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	tradepublisherv1 "github.com/muhammadchandra19/matchcore/internal/domain/trade-publisher/v1"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
)

// Runner hosts an Engine in serve mode: it consumes order requests from the
// feed, applies them, publishes the resulting trades and keeps a periodic
// snapshot resync on top of the per-mutation writes.
type Runner struct {
	engine    *Engine
	reader    orderreaderv1.OrderReader
	publisher tradepublisherv1.Publisher
	logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner around an already-constructed engine.
func NewRunner(
	engine *Engine,
	reader orderreaderv1.OrderReader,
	publisher tradepublisherv1.Publisher,
	log *logger.Logger,
) *Runner {
	return &Runner{
		engine:    engine,
		reader:    reader,
		publisher: publisher,
		logger:    log,
	}
}

// Start launches the order processor and the snapshot manager.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(2)
	go r.runOrderProcessor()
	go r.runSnapshotManager()

	r.logger.Info("Matching engine started", logger.Field{
		Key:   "pair",
		Value: r.engine.pair,
	})

	return nil
}

// Stop gracefully shuts down the runner.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Matching engine stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads and applies order requests in a single goroutine.
func (r *Runner) runOrderProcessor() {
	defer r.wg.Done()

	r.logger.Info("Starting order processor", logger.Field{
		Key:   "pair",
		Value: r.engine.pair,
	})

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("Order processor shutting down")
			r.reader.Close()
			return
		default:
			request, err := r.reader.ReadRequest(r.ctx)
			if err != nil {
				r.logger.ErrorContext(r.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_request",
				})
				// Simple backoff
				time.Sleep(100 * time.Millisecond)
				continue
			}

			r.processRequest(request)
		}
	}
}

// runSnapshotManager handles periodic snapshot resync.
func (r *Runner) runSnapshotManager() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.engine.opts.SnapshotInterval)
	defer ticker.Stop()

	r.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if err := r.engine.Persist(r.ctx); err != nil {
				r.logger.ErrorContext(r.ctx, err, logger.Field{
					Key:   "action",
					Value: "periodic_snapshot",
				})
			}
		}
	}
}

// processRequest applies a single order request. A rejected request leaves
// the book exactly as it was; the error is logged and the loop continues.
func (r *Runner) processRequest(request *orderreaderv1.OrderRequest) {
	var trades []orderbookv1.Trade
	var err error

	switch request.Type {
	case orderreaderv1.RequestTypeSubmit:
		_, trades, err = r.engine.Submit(r.ctx, request.Side, request.Price, request.Quantity)
	case orderreaderv1.RequestTypeCancel:
		trades, err = r.engine.Cancel(r.ctx, request.OrderID)
	default:
		r.logger.Warn("Unknown order request type", logger.Field{
			Key:   "type",
			Value: request.Type,
		})
		return
	}

	if err != nil {
		r.logger.ErrorContext(r.ctx, err,
			logger.Field{Key: "action", Value: "process_order_request"},
			logger.Field{Key: "offset", Value: request.Offset},
		)
	}

	// Trades are final once executed, publish them even when the persistence
	// write behind them failed.
	r.publishTrades(trades)
}

func (r *Runner) publishTrades(trades []orderbookv1.Trade) {
	if r.publisher == nil {
		return
	}

	for _, trade := range trades {
		event := tradepublisherv1.FromTrade(r.engine.pair, trade)
		if err := r.publisher.PublishTradeEvent(r.ctx, event); err != nil {
			r.logger.ErrorContext(r.ctx, err,
				logger.Field{Key: "action", Value: "publish_trade"},
				logger.Field{Key: "tradeSequence", Value: trade.Sequence},
			)
		}
	}
}
