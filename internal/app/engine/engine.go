package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	exchangev1 "github.com/quantonr/exchange/internal/domain/exchange/v1"
	executionpublisherv1 "github.com/quantonr/exchange/internal/domain/execution-publisher/v1"
	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
	orderreaderv1 "github.com/quantonr/exchange/internal/domain/order-reader/v1"
	snapshotv1 "github.com/quantonr/exchange/internal/domain/snapshot/v1"
	"github.com/quantonr/exchange/pkg/config"
	pkgerrors "github.com/quantonr/exchange/pkg/errors"
	"github.com/quantonr/exchange/pkg/logger"
	"github.com/quantonr/exchange/pkg/util"
)

// Engine drives the exchange: it consumes order requests from the inbound
// stream, applies them to the books one at a time, and publishes every
// execution produced before moving to the next request.
type Engine struct {
	exchange      *exchangev1.Exchange
	orderReader   orderreaderv1.OrderReader
	snapshotStore snapshotv1.Store
	publisher     executionpublisherv1.ExecutionPublisher
	logger        *logger.Logger
	config        *config.Config

	mu                 sync.RWMutex
	orderOffset        int64
	lastSnapshotOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshotInterval    time.Duration
	snapshotOffsetDelta int64

	executionsMutex sync.RWMutex
	totalExecutions int64
}

// NewEngine creates an engine with the default options.
func NewEngine(
	exchange *exchangev1.Exchange,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	publisher executionpublisherv1.ExecutionPublisher,
	logger *logger.Logger,
	config *config.Config,
) (*Engine, error) {
	return NewEngineWithOptions(exchange, orderReader, snapshotStore, publisher, logger, config, DefaultEngineOptions())
}

// NewEngineWithOptions creates an engine with custom options. Instruments
// from the configuration are registered and any persisted snapshots are
// restored before the engine is returned.
func NewEngineWithOptions(
	exchange *exchangev1.Exchange,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	publisher executionpublisherv1.ExecutionPublisher,
	logger *logger.Logger,
	config *config.Config,
	options *Options,
) (*Engine, error) {
	e := &Engine{
		exchange:      exchange,
		orderReader:   orderReader,
		snapshotStore: snapshotStore,
		publisher:     publisher,
		logger:        logger,
		config:        config,

		snapshotInterval:    options.SnapshotInterval,
		snapshotOffsetDelta: options.SnapshotOffsetDelta,
		orderOffset:         -1,
	}

	if err := e.loadSnapshots(context.Background()); err != nil {
		return nil, err
	}

	return e, nil
}

// loadSnapshots registers the configured instruments and restores their
// persisted state, if any.
func (e *Engine) loadSnapshots(ctx context.Context) error {
	for _, symbol := range e.config.Symbols {
		if err := e.exchange.AddInstrument(symbol); err != nil {
			return fmt.Errorf("registering instrument %s: %w", symbol, err)
		}

		snapshot, err := e.snapshotStore.Load(ctx, symbol)
		if err != nil {
			return fmt.Errorf("loading snapshot for %s: %w", symbol, err)
		}
		if snapshot == nil {
			continue
		}

		if err := e.exchange.RestoreSnapshot(snapshot); err != nil {
			return fmt.Errorf("restoring snapshot for %s: %w", symbol, err)
		}
		e.setOrderOffset(snapshot.OrderOffset)

		e.logger.Info("Restored snapshot",
			logger.Field{Key: "symbol", Value: symbol},
			logger.Field{Key: "orders", Value: len(snapshot.Orders)},
			logger.Field{Key: "offset", Value: snapshot.OrderOffset},
		)
	}
	return nil
}

// Start initializes the engine and starts the processing routines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.runOrderProcessor()
	go e.runSnapshotManager()

	e.logger.Info("Engine started", logger.Field{
		Key:   "symbols",
		Value: e.config.Symbols,
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor reads and applies requests one at a time.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()

	e.logger.Info("Starting order processor")

	currentOffset := e.getOrderOffset()
	if currentOffset > 0 {
		currentOffset++
	}

	if err := e.orderReader.SetOffset(currentOffset); err != nil {
		e.logger.Error(err, logger.Field{
			Key:   "action",
			Value: "set_order_reader_offset",
		})
		return
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			e.orderReader.Close()
			return
		default:
			msg, request, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			ctx := util.WithRequestID(e.ctx, "")
			if err := e.processRequest(ctx, request); err != nil {
				e.logger.ErrorContext(ctx, err,
					logger.Field{Key: "action", Value: "process_order_request"},
					logger.Field{Key: "code", Value: errorCode(err)},
					logger.Field{Key: "requestAction", Value: request.Action},
					logger.Field{Key: "symbol", Value: request.Symbol},
				)
			}

			e.setOrderOffset(msg.Offset)
		}
	}
}

// processRequest applies one request to the exchange and publishes whatever
// executions it produced. A rejected request publishes nothing.
func (e *Engine) processRequest(ctx context.Context, request *orderreaderv1.OrderRequest) error {
	switch request.Action {
	case orderreaderv1.ActionPlace:
		intent, err := request.Intent()
		if err != nil {
			return err
		}
		orderID, err := e.exchange.AddOrder(request.Symbol, intent)
		if err != nil {
			return err
		}
		e.logger.DebugContext(ctx, "Order placed",
			logger.Field{Key: "orderID", Value: orderID},
			logger.Field{Key: "symbol", Value: request.Symbol},
		)
	case orderreaderv1.ActionCancel:
		if err := e.exchange.CancelOrder(request.Symbol, request.OrderID); err != nil {
			return err
		}
	case orderreaderv1.ActionModifyPrice:
		price, err := request.PriceCents()
		if err != nil {
			return err
		}
		newID, err := e.exchange.ModifyPrice(request.Symbol, request.OrderID, price)
		if err != nil {
			return err
		}
		e.logger.DebugContext(ctx, "Order repriced",
			logger.Field{Key: "orderID", Value: request.OrderID},
			logger.Field{Key: "newOrderID", Value: newID},
		)
	case orderreaderv1.ActionModifySize:
		if err := e.exchange.ModifySize(request.Symbol, request.OrderID, request.Size); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown action %q", request.Action)
	}

	return e.publishExecutions(ctx)
}

// errorCode maps a rejection to its wire error code.
func errorCode(err error) pkgerrors.ErrorCode {
	switch {
	case errors.Is(err, orderbookv1.ErrUnknownOrder):
		return pkgerrors.ErrUnknownOrderID
	case errors.Is(err, exchangev1.ErrUnknownSymbol):
		return pkgerrors.ErrUnknownSymbol
	case errors.Is(err, orderbookv1.ErrInsufficientLiquidity):
		return pkgerrors.ErrInsufficientLiquidity
	case errors.Is(err, orderbookv1.ErrInvalidSize),
		errors.Is(err, orderbookv1.ErrInvalidPrice),
		errors.Is(err, orderbookv1.ErrPriceOnMarket):
		return pkgerrors.ErrInvalidArgument
	default:
		return pkgerrors.GeneralInternalServerError
	}
}

// publishExecutions drains the exchange execution queue in order.
func (e *Engine) publishExecutions(ctx context.Context) error {
	published := int64(0)
	for {
		execution := e.exchange.PopNextExecution()
		if execution == nil {
			break
		}

		report := executionpublisherv1.FromExecution(execution)
		if err := e.publisher.PublishExecutionReport(ctx, report); err != nil {
			return err
		}
		published++
	}

	if published > 0 {
		e.executionsMutex.Lock()
		e.totalExecutions += published
		total := e.totalExecutions
		e.executionsMutex.Unlock()

		e.logger.InfoContext(ctx, "Executions published",
			logger.Field{Key: "count", Value: published},
			logger.Field{Key: "totalExecutions", Value: total},
		)
	}
	return nil
}

// runSnapshotManager handles periodic snapshots.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshots()
			}
		}
	}
}

// shouldCreateSnapshot checks if enough of the stream has been consumed
// since the last snapshot.
func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.RLock()
	currentOffset := e.orderOffset
	lastSnapshotOffset := e.lastSnapshotOffset
	e.mu.RUnlock()

	if currentOffset <= 0 {
		return false
	}

	return currentOffset-lastSnapshotOffset >= e.snapshotOffsetDelta
}

// createAndStoreSnapshots snapshots every registered book.
func (e *Engine) createAndStoreSnapshots() {
	currentOffset := e.getOrderOffset()

	for _, symbol := range e.exchange.ListInstruments() {
		snapshot, err := e.exchange.CreateSnapshot(symbol)
		if err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "create_snapshot",
			})
			continue
		}
		snapshot.OrderOffset = currentOffset

		if err := e.snapshotStore.Store(e.ctx, snapshot); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "store_snapshot",
			})
			continue
		}
	}

	e.setLastSnapshotOffset(currentOffset)
	e.logger.Info("Snapshots stored", logger.Field{
		Key:   "offset",
		Value: currentOffset,
	})
}

func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotOffset = offset
}
