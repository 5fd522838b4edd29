package orderbookv1

import (
	"fmt"
)

// PriceLevel is the FIFO of all resting orders sharing one price on one side.
// Orders are linked intrusively (next/prev pointers live on the Order) so
// that cancel and modify are O(1) given the order handle from the by-id
// index.
type PriceLevel struct {
	price       int32
	totalVolume int64
	orderCount  int
	head        *Order
	tail        *Order
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price int32) *PriceLevel {
	return &PriceLevel{price: price}
}

// Price returns the level price in cents.
func (l *PriceLevel) Price() int32 { return l.price }

// TotalVolume returns the sum of open shares of all linked orders.
func (l *PriceLevel) TotalVolume() int64 { return l.totalVolume }

// OrderCount returns the number of linked orders.
func (l *PriceLevel) OrderCount() int { return l.orderCount }

// Head returns the FIFO front, the next order to match at this price.
func (l *PriceLevel) Head() *Order { return l.head }

// Tail returns the FIFO back, the order with the worst time priority.
func (l *PriceLevel) Tail() *Order { return l.tail }

// IsEmpty reports whether the level has no orders.
func (l *PriceLevel) IsEmpty() bool { return l.orderCount == 0 }

// Append links an order at the tail of the FIFO and folds its open shares
// into the level totals.
func (l *PriceLevel) Append(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.shares <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, order.shares)
	}

	order.level = l
	order.next = nil
	order.prev = l.tail
	if l.tail == nil {
		l.head = order
	} else {
		l.tail.next = order
	}
	l.tail = order

	l.orderCount++
	l.totalVolume += order.shares
	return nil
}

// Unlink splices an order out of the FIFO and removes its open shares from
// the level totals. The caller drops the order immediately afterwards.
func (l *PriceLevel) Unlink(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.level != l {
		return ErrOrderNotInLevel
	}

	if order.prev != nil {
		order.prev.next = order.next
	} else {
		l.head = order.next
	}
	if order.next != nil {
		order.next.prev = order.prev
	} else {
		l.tail = order.prev
	}
	order.next = nil
	order.prev = nil
	order.level = nil

	l.orderCount--
	l.totalVolume -= order.shares
	return nil
}

// AdjustVolume shifts the level total when an order's open shares change in
// place (size-modify or a partial fill).
func (l *PriceLevel) AdjustVolume(delta int64) {
	l.totalVolume += delta
}

// Orders returns the linked orders in FIFO order. Used by snapshots and
// tests; matching walks the list directly.
func (l *PriceLevel) Orders() []*Order {
	orders := make([]*Order, 0, l.orderCount)
	for o := l.head; o != nil; o = o.next {
		orders = append(orders, o)
	}
	return orders
}

// Validate checks the level invariants: the volume and count totals against
// the linked list, and head/tail consistency.
func (l *PriceLevel) Validate() error {
	if l.price <= 0 {
		return fmt.Errorf("%w: level price %d", ErrInvalidPrice, l.price)
	}
	if (l.head == nil) != (l.tail == nil) || (l.head == nil) != (l.orderCount == 0) {
		return fmt.Errorf("level %d: head/tail/count disagree", l.price)
	}

	var volume int64
	count := 0
	for o := l.head; o != nil; o = o.next {
		if o.level != l {
			return fmt.Errorf("level %d: order %d has wrong parent level", l.price, o.id)
		}
		if o.shares <= 0 {
			return fmt.Errorf("%w: order %d has %d open shares", ErrInvalidSize, o.id, o.shares)
		}
		volume += o.shares
		count++
	}

	if volume != l.totalVolume {
		return fmt.Errorf("level %d: volume mismatch: linked %d, stored %d", l.price, volume, l.totalVolume)
	}
	if count != l.orderCount {
		return fmt.Errorf("level %d: count mismatch: linked %d, stored %d", l.price, count, l.orderCount)
	}
	return nil
}
