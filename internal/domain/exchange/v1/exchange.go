package exchangev1

import (
	"errors"
	"fmt"
	"sort"
	"time"

	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
	snapshotv1 "github.com/quantonr/exchange/internal/domain/snapshot/v1"
)

var (
	ErrUnknownSymbol   = errors.New("instrument not covered by the exchange")
	ErrSymbolExists    = errors.New("instrument already registered")
	ErrEmptySymbol     = errors.New("symbol cannot be empty")
	ErrSymbolMismatch  = errors.New("snapshot symbol does not match")
	ErrNilSnapshot     = errors.New("snapshot cannot be nil")
	ErrBookNotRestored = errors.New("book must be empty to restore a snapshot")
)

// NBBO is the best bid and best ask of one instrument in internal cents. A
// nil side carries no resting volume.
type NBBO struct {
	Bid *int32
	Ask *int32
}

// Exchange is the instrument registry: it owns one book per symbol, the
// shared id allocator, and the outbound execution queue, and it routes
// client-facing operations to the right book.
type Exchange struct {
	name       string
	books      map[string]*orderbookv1.Book
	ids        *IDAllocator
	executions *orderbookv1.ExecutionQueue
}

// NewExchange creates an exchange with no instruments.
func NewExchange(name string) *Exchange {
	return &Exchange{
		name:       name,
		books:      make(map[string]*orderbookv1.Book),
		ids:        NewIDAllocator(),
		executions: orderbookv1.NewExecutionQueue(),
	}
}

// Name returns the exchange name.
func (e *Exchange) Name() string { return e.name }

// AddInstrument registers a new symbol with an empty book.
func (e *Exchange) AddInstrument(symbol string) error {
	if symbol == "" {
		return ErrEmptySymbol
	}
	if _, exists := e.books[symbol]; exists {
		return fmt.Errorf("%w: %s", ErrSymbolExists, symbol)
	}
	e.books[symbol] = orderbookv1.NewBook(symbol, e.ids, e.executions)
	return nil
}

// RemoveInstrument destroys the book of a symbol together with all its
// resting orders. Executions already emitted for the symbol stay in the
// exchange-owned queue and are still delivered to consumers.
func (e *Exchange) RemoveInstrument(symbol string) error {
	if _, exists := e.books[symbol]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	delete(e.books, symbol)
	return nil
}

// ListInstruments returns the registered symbols in lexical order.
func (e *Exchange) ListInstruments() []string {
	symbols := make([]string, 0, len(e.books))
	for symbol := range e.books {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// GetBook returns the book of a symbol.
func (e *Exchange) GetBook(symbol string) (*orderbookv1.Book, error) {
	book, exists := e.books[symbol]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return book, nil
}

// AddOrder submits an order intent to the book of a symbol and returns the
// assigned order id.
func (e *Exchange) AddOrder(symbol string, intent orderbookv1.OrderIntent) (uint64, error) {
	book, err := e.GetBook(symbol)
	if err != nil {
		return 0, err
	}
	return book.Submit(intent)
}

// CancelOrder removes a resting order from the book of a symbol.
func (e *Exchange) CancelOrder(symbol string, orderID uint64) error {
	book, err := e.GetBook(symbol)
	if err != nil {
		return err
	}
	return book.Cancel(orderID)
}

// ModifyPrice reprices a resting order, giving up its queue position, and
// returns the new order id.
func (e *Exchange) ModifyPrice(symbol string, orderID uint64, newPrice int32) (uint64, error) {
	book, err := e.GetBook(symbol)
	if err != nil {
		return 0, err
	}
	return book.ModifyPrice(orderID, newPrice)
}

// ModifySize replaces the open shares of a resting order in place.
func (e *Exchange) ModifySize(symbol string, orderID uint64, newShares int64) error {
	book, err := e.GetBook(symbol)
	if err != nil {
		return err
	}
	return book.ModifySize(orderID, newShares)
}

// GetNBBO returns the best bid and best ask of a symbol.
func (e *Exchange) GetNBBO(symbol string) (NBBO, error) {
	book, err := e.GetBook(symbol)
	if err != nil {
		return NBBO{}, err
	}

	var nbbo NBBO
	if bid, ok := book.BuySide().BestPrice(); ok {
		nbbo.Bid = &bid
	}
	if ask, ok := book.SellSide().BestPrice(); ok {
		nbbo.Ask = &ask
	}
	return nbbo, nil
}

// PopNextExecution removes and returns the oldest undelivered execution
// across all books, or nil if the queue is empty.
func (e *Exchange) PopNextExecution() *orderbookv1.Execution {
	return e.executions.Pop()
}

// PendingExecutions returns the number of undelivered executions.
func (e *Exchange) PendingExecutions() int {
	return e.executions.Len()
}

// IDs returns the shared id allocator.
func (e *Exchange) IDs() *IDAllocator { return e.ids }

// CreateSnapshot captures the resting state of one book, with orders sorted
// by ascending order id so a restore replays them in priority order.
func (e *Exchange) CreateSnapshot(symbol string) (*snapshotv1.Snapshot, error) {
	book, err := e.GetBook(symbol)
	if err != nil {
		return nil, err
	}

	resting := book.RestingOrders()
	sort.Slice(resting, func(i, j int) bool {
		return resting[i].ID < resting[j].ID
	})

	orders := make([]snapshotv1.BookOrder, 0, len(resting))
	for _, r := range resting {
		orders = append(orders, snapshotv1.BookOrder{
			OrderID:   r.ID,
			ClientID:  r.ClientID,
			Side:      r.Side,
			Price:     r.Price,
			Shares:    r.Shares,
			Filled:    r.Filled,
			Notional:  r.Notional,
			Timestamp: r.EntryTime.UnixNano(),
		})
	}

	return &snapshotv1.Snapshot{
		Symbol:          symbol,
		Orders:          orders,
		NextOrderID:     e.ids.orderID.Load(),
		NextExecutionID: e.ids.executionID.Load(),
	}, nil
}

// RestoreSnapshot rebuilds the book of a symbol from a snapshot and advances
// the id sequences past every restored id. The book must be empty.
func (e *Exchange) RestoreSnapshot(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}
	book, err := e.GetBook(snapshot.Symbol)
	if err != nil {
		return err
	}
	if book.OrderCount() != 0 {
		return fmt.Errorf("%w: %s", ErrBookNotRestored, snapshot.Symbol)
	}

	for _, o := range snapshot.Orders {
		err := book.RestoreResting(orderbookv1.RestingOrder{
			ID:        o.OrderID,
			ClientID:  o.ClientID,
			Side:      o.Side,
			Price:     o.Price,
			Shares:    o.Shares,
			Filled:    o.Filled,
			Notional:  o.Notional,
			EntryTime: time.Unix(0, o.Timestamp),
		})
		if err != nil {
			return fmt.Errorf("restoring order %d for %s: %w", o.OrderID, snapshot.Symbol, err)
		}
		e.ids.EnsureOrderIDAtLeast(o.OrderID + 1)
	}

	e.ids.EnsureOrderIDAtLeast(snapshot.NextOrderID)
	e.ids.EnsureExecutionIDAtLeast(snapshot.NextExecutionID)
	return nil
}
