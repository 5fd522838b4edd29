package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/quantonr/exchange/internal/app/engine"
	exchangev1 "github.com/quantonr/exchange/internal/domain/exchange/v1"
	executionpublisher "github.com/quantonr/exchange/internal/usecase/execution-publisher"
	orderreader "github.com/quantonr/exchange/internal/usecase/order-reader"
	"github.com/quantonr/exchange/internal/usecase/snapshot"
	"github.com/quantonr/exchange/pkg/config"
	"github.com/quantonr/exchange/pkg/logger"
	"github.com/quantonr/exchange/pkg/redis"
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

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := cfg.Redis
	rclient := redis.NewClient(log, &redisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	exchange := exchangev1.NewExchange("quanton")
	oReader := orderreader.NewReader(cfg.Kafka, log)
	snapshotStore := snapshot.NewSnapshotStore(rclient, log)
	publisher := executionpublisher.NewPublisher(cfg.Kafka, log)

	engine, err := app.NewEngine(
		exchange,
		oReader,
		snapshotStore,
		publisher,
		log,
		cfg,
	)
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "create_engine",
		})
		return
	}

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching engine started", logger.Field{
		Key:   "symbols",
		Value: cfg.Symbols,
	})

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if err := publisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_publisher",
		})
	}

	if err := rclient.Disconnect(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching engine shutdown complete")
}
