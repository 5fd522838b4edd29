package snapshotv1

import (
	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
)

// BookOrder is one resting order as persisted in a snapshot.
type BookOrder struct {
	OrderID   uint64           `json:"orderID"`
	ClientID  uint32           `json:"clientID"`
	Side      orderbookv1.Side `json:"side"`
	Price     int32            `json:"price"` // cents
	Shares    int64            `json:"shares"`
	Filled    int64            `json:"filled"`
	Notional  int64            `json:"notional"`
	Timestamp int64            `json:"timestamp"` // entry time, unix nanoseconds
}

// Snapshot is the persisted state of one book: every resting order in
// ascending order-id order (which reproduces FIFO priority on restore), the
// stream offset it was taken at, and the id sequences to resume from.
type Snapshot struct {
	Symbol          string      `json:"symbol"`
	OrderOffset     int64       `json:"orderOffset"`
	Orders          []BookOrder `json:"orders"`
	NextOrderID     uint64      `json:"nextOrderID"`
	NextExecutionID uint64      `json:"nextExecutionID"`
}
