package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/matchcore/internal/app/engine"
	orderbookv1 "github.com/muhammadchandra19/matchcore/internal/domain/orderbook/v1"
	orderreader "github.com/muhammadchandra19/matchcore/internal/usecase/order-reader"
	"github.com/muhammadchandra19/matchcore/internal/usecase/orderbook"
	"github.com/muhammadchandra19/matchcore/internal/usecase/snapshot"
	tradepublisher "github.com/muhammadchandra19/matchcore/internal/usecase/trade-publisher"
	"github.com/muhammadchandra19/matchcore/pkg/config"
	"github.com/muhammadchandra19/matchcore/pkg/kv"
	"github.com/muhammadchandra19/matchcore/pkg/logger"
	"github.com/muhammadchandra19/matchcore/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	log = l
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  matchcore order <pair> <buy|sell> <price> [quantity]")
	fmt.Println("  matchcore print <pair>")
	fmt.Println("  matchcore serve")
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return
	}

	ctx := context.Background()

	switch args[0] {
	case "order":
		runOrder(ctx, args[1:])
	case "print":
		runPrint(ctx, args[1:])
	case "serve":
		runServe(ctx)
	default:
		usage()
		os.Exit(1)
	}
}

// fatal reports a user-facing failure and exits without touching the book.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openStore builds the snapshot store for a pair on the configured backend
// and returns a close function for the underlying client.
func openStore(ctx context.Context, pair string) (*snapshot.Store, func()) {
	switch cfg.StoreConfig.Backend {
	case config.BackendRedis:
		redisConfig := redis.DefaultConfig()
		redisConfig.Addrs = strings.Split(cfg.RedisConfig.Addrs, ",")
		redisConfig.Password = cfg.RedisConfig.Password
		redisConfig.Username = cfg.RedisConfig.Username
		redisConfig.DB = cfg.RedisConfig.DB

		client := redis.NewClient(log, redisConfig)
		if err := client.Connect(ctx); err != nil {
			fatal("could not connect to redis: %v", err)
		}
		return snapshot.NewStore(client, pair, log), func() {
			if err := client.Disconnect(ctx); err != nil {
				log.Error(err, logger.Field{Key: "action", Value: "disconnect_redis"})
			}
		}
	case config.BackendPebble:
		kvConfig := kv.DefaultConfig()
		kvConfig.Path = cfg.StoreConfig.Path

		client := kv.NewClient(log, kvConfig)
		if err := client.Open(ctx); err != nil {
			fatal("could not open embedded store: %v", err)
		}
		return snapshot.NewStore(client, pair, log), func() {
			if err := client.Close(ctx); err != nil {
				log.Error(err, logger.Field{Key: "action", Value: "close_kv"})
			}
		}
	default:
		fatal("unknown store backend %q", cfg.StoreConfig.Backend)
		return nil, nil
	}
}

func newEngine(ctx context.Context, pair string, store *snapshot.Store) *app.Engine {
	opts := app.DefaultEngineOptions()
	opts.SyncPersist = cfg.SyncPersist
	opts.SnapshotInterval = cfg.SnapshotInterval

	engine, err := app.NewEngineWithOptions(ctx, pair, orderbook.NewBook(), store, log, opts)
	if err != nil {
		fatal("could not restore order book: %v", err)
	}
	return engine
}

func runOrder(ctx context.Context, args []string) {
	if len(args) < 3 {
		fatal("invalid usage! Example: order btc/usd buy 10 3 (quantity defaults to 1)")
	}

	pair := args[0]
	side, err := orderbookv1.ParseSide(args[1])
	if err != nil {
		fatal("invalid side %q: expected buy or sell", args[1])
	}

	price, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil || price <= 0 {
		fatal("invalid price %q: expected a positive integer", args[2])
	}

	quantity := int64(1)
	if len(args) > 3 {
		quantity, err = strconv.ParseInt(args[3], 10, 64)
		if err != nil || quantity <= 0 {
			fatal("invalid quantity %q: expected a positive integer", args[3])
		}
	}

	store, closeStore := openStore(ctx, pair)
	defer closeStore()

	engine := newEngine(ctx, pair, store)

	order, trades, err := engine.Submit(ctx, side, price, quantity)
	if err != nil {
		fatal("order rejected: %v", err)
	}

	fmt.Printf("order %s %s %d@%d status=%s remaining=%d\n",
		order.ID, order.Side, order.Quantity, order.Price, order.Status, order.Remaining)
	for _, trade := range trades {
		fmt.Printf("trade #%d %d@%d maker=%s taker=%s\n",
			trade.Sequence, trade.Quantity, trade.Price, trade.MakerOrderID, trade.TakerOrderID)
	}
}

func runPrint(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("pair is required. Example: print btc/usd")
	}
	pair := args[0]

	store, closeStore := openStore(ctx, pair)
	defer closeStore()

	engine := newEngine(ctx, pair, store)

	fmt.Println("Active orders:")
	for _, order := range engine.ActiveOrders() {
		fmt.Printf("  %s %s %d@%d seq=%d status=%s remaining=%d\n",
			order.ID, order.Side, order.Quantity, order.Price, order.Sequence, order.Status, order.Remaining)
	}
	fmt.Println("Fulfilled orders:")
	for _, order := range engine.ClosedOrders() {
		fmt.Printf("  %s %s %d@%d seq=%d status=%s\n",
			order.ID, order.Side, order.Quantity, order.Price, order.Sequence, order.Status)
	}
}

func runServe(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	store, closeStore := openStore(ctx, cfg.Pair)
	defer closeStore()

	engine := newEngine(ctx, cfg.Pair, store)
	reader := orderreader.NewReader(cfg.KafkaConfig, log)
	publisher := tradepublisher.NewPublisher(cfg.KafkaConfig, log)
	runner := app.NewRunner(engine, reader, publisher, log)

	if err := runner.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start_runner"})
		return
	}

	log.Info("Matching core started successfully", logger.Field{
		Key:   "pair",
		Value: cfg.Pair,
	})

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := runner.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_runner"})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "close_publisher"})
	}

	log.Info("Matching core shutdown complete")
}
