package orderbookv1

import (
	"fmt"
	"time"
)

// IDSource allocates monotonic order and execution ids. The order id is
// assigned before any crossing takes place so every execution produced by a
// submit references the final id.
type IDSource interface {
	NextOrderID() uint64
	NextExecutionID() uint64
}

// Book is the per-instrument order book: both sides, the by-id index used by
// cancel and modify, and the matching algorithm. All mutating operations for
// one book must run on a single goroutine; the book itself does not lock.
type Book struct {
	symbol     string
	buy        *BookSide
	sell       *BookSide
	orders     map[uint64]*Order
	ids        IDSource
	executions *ExecutionQueue
}

// NewBook creates an empty book for one instrument. The id source and the
// execution queue are shared across the books of one exchange.
func NewBook(symbol string, ids IDSource, executions *ExecutionQueue) *Book {
	return &Book{
		symbol:     symbol,
		buy:        NewBookSide(SideBuy),
		sell:       NewBookSide(SideSell),
		orders:     make(map[uint64]*Order),
		ids:        ids,
		executions: executions,
	}
}

// Symbol returns the instrument symbol.
func (b *Book) Symbol() string { return b.symbol }

// BuySide returns the bid side.
func (b *Book) BuySide() *BookSide { return b.buy }

// SellSide returns the ask side.
func (b *Book) SellSide() *BookSide { return b.sell }

// Order returns the resting order with the given id.
func (b *Book) Order(id uint64) (*Order, bool) {
	order, ok := b.orders[id]
	return order, ok
}

// OrderCount returns the number of resting orders.
func (b *Book) OrderCount() int { return len(b.orders) }

func (b *Book) sideOf(side Side) *BookSide {
	if side == SideBuy {
		return b.buy
	}
	return b.sell
}

// taker is the in-flight state of an incoming order while it consumes the
// opposing side: the remaining shares plus the running statistics emitted
// into execution reports.
type taker struct {
	id        uint64
	clientID  uint32
	side      Side
	orderType OrderType
	price     int32
	initial   int64
	remaining int64
	filled    int64
	notional  int64
	entryTime time.Time
}

func (t *taker) apply(size int64, price int32) {
	t.remaining -= size
	t.filled += size
	t.notional += int64(price) * size
}

func (t *taker) avgPrice() float64 {
	if t.filled == 0 {
		return 0
	}
	return float64(t.notional) / float64(t.filled)
}

// Submit validates and executes one order intent. Market orders sweep the
// opposing side; limit orders cross the spread while they can and rest any
// remainder on their own side. The assigned order id is returned; it is
// meaningful to the caller only when part of the order rested.
func (b *Book) Submit(intent OrderIntent) (uint64, error) {
	if err := intent.Validate(); err != nil {
		return 0, err
	}

	opposing := b.sideOf(intent.Side.Opposite())

	// The liquidity precondition is checked before the id is allocated so a
	// rejected submit leaves no trace.
	if intent.Type == OrderTypeMarket && intent.Shares > opposing.Volume() {
		return 0, fmt.Errorf("%w: market %s for %d shares against %s volume %d",
			ErrInsufficientLiquidity, intent.Side, intent.Shares, intent.Side.Opposite(), opposing.Volume())
	}

	t := &taker{
		id:        b.ids.NextOrderID(),
		clientID:  intent.ClientID,
		side:      intent.Side,
		orderType: intent.Type,
		price:     intent.Price,
		initial:   intent.Shares,
		remaining: intent.Shares,
		entryTime: time.Now(),
	}

	switch intent.Type {
	case OrderTypeMarket:
		b.sweep(t, opposing)
	case OrderTypeLimit:
		b.cross(t, opposing)
		if t.remaining > 0 {
			b.rest(t)
		}
	}

	return t.id, nil
}

// sweep consumes the opposing side best level first until the market taker
// is done. The caller has already checked the side volume covers the taker.
func (b *Book) sweep(t *taker, opposing *BookSide) {
	for t.remaining > 0 {
		level := opposing.BestLevel()
		if level == nil {
			panic(fmt.Sprintf("orderbook %s: market order %d ran out of liquidity mid-sweep", b.symbol, t.id))
		}
		b.matchLevel(t, level, opposing)
	}
}

// cross matches a limit taker against the opposing best level for as long as
// the taker's limit crosses it.
func (b *Book) cross(t *taker, opposing *BookSide) {
	for t.remaining > 0 {
		level := opposing.BestLevel()
		if level == nil || !crosses(t.side, t.price, level.price) {
			break
		}
		b.matchLevel(t, level, opposing)
	}
}

// crosses reports whether a taker limit reaches the opposing best price.
func crosses(side Side, takerPrice, bestPrice int32) bool {
	if side == SideBuy {
		return takerPrice >= bestPrice
	}
	return takerPrice <= bestPrice
}

// rest places the taker's remainder on its own side and indexes it. The
// running fill statistics accumulated while crossing carry over to the
// resting order.
func (b *Book) rest(t *taker) {
	order := &Order{
		id:        t.id,
		clientID:  t.clientID,
		side:      t.side,
		orderType: t.orderType,
		price:     t.price,
		shares:    t.remaining,
		filled:    t.filled,
		notional:  t.notional,
		entryTime: t.entryTime,
	}
	if err := b.sideOf(t.side).AddResting(order); err != nil {
		panic(fmt.Sprintf("orderbook %s: resting remainder of order %d: %v", b.symbol, t.id, err))
	}
	b.orders[t.id] = order
}

// matchLevel consumes head orders of one level in FIFO order until the taker
// is done or the level drains, emitting one execution per maker touched.
// Fills always happen at the level price, the maker's price.
func (b *Book) matchLevel(t *taker, level *PriceLevel, opposing *BookSide) {
	for t.remaining > 0 && level.head != nil {
		maker := level.head
		size := t.remaining
		if maker.shares < size {
			size = maker.shares
		}
		price := level.price

		maker.addFill(size, price)
		level.AdjustVolume(-size)
		opposing.AdjustVolume(-size)
		t.apply(size, price)

		makerExecType := ExecTypePartialFill
		if maker.shares == 0 {
			makerExecType = ExecTypeFullFill
		}
		takerExecType := ExecTypePartialFill
		if t.remaining == 0 {
			takerExecType = ExecTypeFullFill
		}

		b.executions.Push(&Execution{
			ID:            b.ids.NextExecutionID(),
			Symbol:        b.symbol,
			MakerOrderID:  maker.id,
			TakerOrderID:  t.id,
			MakerClientID: maker.clientID,
			TakerClientID: t.clientID,
			MakerSide:     maker.side,
			TakerSide:     t.side,
			Price:         price,
			Size:          size,
			MakerExecType: makerExecType,
			TakerExecType: takerExecType,
			MakerFilled:   maker.filled,
			TakerFilled:   t.filled,
			MakerLeaves:   maker.shares,
			TakerLeaves:   t.remaining,
			MakerAvgPrice: maker.AvgPrice(),
			TakerAvgPrice: t.avgPrice(),
			Timestamp:     time.Now(),
		})

		if maker.shares == 0 {
			// Level and side volumes were already reduced by the fill; the
			// unlink removes a zero-share order.
			if err := level.Unlink(maker); err != nil {
				panic(fmt.Sprintf("orderbook %s: unlinking filled maker %d: %v", b.symbol, maker.id, err))
			}
			delete(b.orders, maker.id)
		}
	}

	if level.IsEmpty() {
		opposing.removeLevel(level)
	}
}

// Cancel removes a resting order. No execution is emitted.
func (b *Book) Cancel(id uint64) error {
	order, ok := b.orders[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownOrder, id)
	}
	if order.level == nil {
		panic(fmt.Sprintf("orderbook %s: indexed order %d has no parent level", b.symbol, id))
	}
	if err := b.sideOf(order.side).RemoveOrder(order); err != nil {
		panic(fmt.Sprintf("orderbook %s: canceling order %d: %v", b.symbol, id, err))
	}
	delete(b.orders, id)
	return nil
}

// ModifyPrice moves a resting order to a new price. It is cancel-then-submit
// under the hood: the order gives up its queue position and comes back with
// a new id at the tail of the new level, crossing first if the new price
// reaches the opposing side. The new id is returned.
func (b *Book) ModifyPrice(id uint64, newPrice int32) (uint64, error) {
	order, ok := b.orders[id]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownOrder, id)
	}
	if newPrice <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPrice, newPrice)
	}

	intent := OrderIntent{
		Side:     order.side,
		Type:     order.orderType,
		Shares:   order.shares,
		Price:    newPrice,
		ClientID: order.clientID,
	}

	if err := b.sideOf(order.side).RemoveOrder(order); err != nil {
		panic(fmt.Sprintf("orderbook %s: repricing order %d: %v", b.symbol, id, err))
	}
	delete(b.orders, id)

	return b.Submit(intent)
}

// ModifySize replaces the open shares of a resting order in place. Time
// priority is preserved. A new size of zero or less is rejected; a plain
// cancel is the way to take an order out.
func (b *Book) ModifySize(id uint64, newShares int64) error {
	order, ok := b.orders[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownOrder, id)
	}
	if newShares <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, newShares)
	}
	if order.level == nil {
		panic(fmt.Sprintf("orderbook %s: indexed order %d has no parent level", b.symbol, id))
	}

	delta := newShares - order.shares
	order.setShares(newShares)
	order.level.AdjustVolume(delta)
	b.sideOf(order.side).AdjustVolume(delta)
	return nil
}

// RestingOrder is the portable form of one resting order, used to rebuild a
// book from a snapshot with ids, prices, and per-order statistics intact.
type RestingOrder struct {
	ID        uint64
	ClientID  uint32
	Side      Side
	Price     int32
	Shares    int64
	Filled    int64
	Notional  int64
	EntryTime time.Time
}

// RestingOrders returns every resting order of the book. Ordering across
// price levels is unspecified; within a level orders come out in FIFO order.
func (b *Book) RestingOrders() []RestingOrder {
	orders := make([]RestingOrder, 0, len(b.orders))
	collect := func(level *PriceLevel) bool {
		for o := level.head; o != nil; o = o.next {
			orders = append(orders, RestingOrder{
				ID:        o.id,
				ClientID:  o.clientID,
				Side:      o.side,
				Price:     o.price,
				Shares:    o.shares,
				Filled:    o.filled,
				Notional:  o.notional,
				EntryTime: o.entryTime,
			})
		}
		return true
	}
	b.buy.ScanBestFirst(collect)
	b.sell.ScanBestFirst(collect)
	return orders
}

// RestoreResting relinks one snapshotted order into the book. Orders must be
// restored in ascending id order to reproduce the original FIFO priority.
func (b *Book) RestoreResting(r RestingOrder) error {
	if r.Side != SideBuy && r.Side != SideSell {
		return fmt.Errorf("invalid side %q", r.Side)
	}
	if r.Shares <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, r.Shares)
	}
	if r.Price <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPrice, r.Price)
	}
	if _, exists := b.orders[r.ID]; exists {
		return fmt.Errorf("%w: id %d", ErrDuplicateOrderID, r.ID)
	}

	order := &Order{
		id:        r.ID,
		clientID:  r.ClientID,
		side:      r.Side,
		orderType: OrderTypeLimit,
		price:     r.Price,
		shares:    r.Shares,
		filled:    r.Filled,
		notional:  r.Notional,
		entryTime: r.EntryTime,
	}
	if err := b.sideOf(r.Side).AddResting(order); err != nil {
		return err
	}
	b.orders[r.ID] = order
	return nil
}

// Validate checks the book invariants: both sides are internally consistent
// and the by-id index contains exactly the orders linked into levels.
func (b *Book) Validate() error {
	if err := b.buy.Validate(); err != nil {
		return err
	}
	if err := b.sell.Validate(); err != nil {
		return err
	}

	linked := 0
	var err error
	check := func(level *PriceLevel) bool {
		for o := level.head; o != nil; o = o.next {
			linked++
			indexed, ok := b.orders[o.id]
			if !ok {
				err = fmt.Errorf("book %s: linked order %d missing from index", b.symbol, o.id)
				return false
			}
			if indexed != o {
				err = fmt.Errorf("book %s: index entry %d points at a different order", b.symbol, o.id)
				return false
			}
		}
		return true
	}
	b.buy.ScanBestFirst(check)
	if err != nil {
		return err
	}
	b.sell.ScanBestFirst(check)
	if err != nil {
		return err
	}

	if linked != len(b.orders) {
		return fmt.Errorf("book %s: %d orders linked, %d indexed", b.symbol, linked, len(b.orders))
	}
	return nil
}
