package exchangev1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/quantonr/exchange/internal/domain/orderbook/v1"
)

func newTestExchange(t *testing.T, symbols ...string) *Exchange {
	t.Helper()
	exchange := NewExchange("test")
	for _, symbol := range symbols {
		require.NoError(t, exchange.AddInstrument(symbol))
	}
	return exchange
}

func limitIntent(side orderbookv1.Side, shares int64, price int32, clientID uint32) orderbookv1.OrderIntent {
	return orderbookv1.OrderIntent{
		Side:     side,
		Type:     orderbookv1.OrderTypeLimit,
		Shares:   shares,
		Price:    price,
		ClientID: clientID,
	}
}

func TestExchange_Instruments(t *testing.T) {
	t.Run("add and list", func(t *testing.T) {
		exchange := newTestExchange(t, "MSFT", "AAPL")
		assert.Equal(t, []string{"AAPL", "MSFT"}, exchange.ListInstruments())
	})

	t.Run("duplicate symbol", func(t *testing.T) {
		exchange := newTestExchange(t, "AAPL")
		assert.ErrorIs(t, exchange.AddInstrument("AAPL"), ErrSymbolExists)
	})

	t.Run("empty symbol", func(t *testing.T) {
		exchange := newTestExchange(t)
		assert.ErrorIs(t, exchange.AddInstrument(""), ErrEmptySymbol)
	})

	t.Run("remove", func(t *testing.T) {
		exchange := newTestExchange(t, "AAPL")
		require.NoError(t, exchange.RemoveInstrument("AAPL"))
		assert.Empty(t, exchange.ListInstruments())
		assert.ErrorIs(t, exchange.RemoveInstrument("AAPL"), ErrUnknownSymbol)
	})

	t.Run("unknown symbol surfaces on every operation", func(t *testing.T) {
		exchange := newTestExchange(t)

		_, err := exchange.GetBook("GME")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		_, err = exchange.AddOrder("GME", limitIntent(orderbookv1.SideBuy, 1, 100, 1))
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		assert.ErrorIs(t, exchange.CancelOrder("GME", 0), ErrUnknownSymbol)
		_, err = exchange.ModifyPrice("GME", 0, 100)
		assert.ErrorIs(t, err, ErrUnknownSymbol)
		assert.ErrorIs(t, exchange.ModifySize("GME", 0, 1), ErrUnknownSymbol)
		_, err = exchange.GetNBBO("GME")
		assert.ErrorIs(t, err, ErrUnknownSymbol)
	})
}

func TestExchange_RemoveInstrumentKeepsPendingExecutions(t *testing.T) {
	exchange := newTestExchange(t, "AAPL")

	_, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideSell, 5, 3000, 1))
	require.NoError(t, err)
	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 5, 3000, 2))
	require.NoError(t, err)

	require.NoError(t, exchange.RemoveInstrument("AAPL"))

	// The queue outlives the book; the fill is still delivered.
	execution := exchange.PopNextExecution()
	require.NotNil(t, execution)
	assert.Equal(t, "AAPL", execution.Symbol)
	assert.Nil(t, exchange.PopNextExecution())
}

func TestExchange_GetNBBO(t *testing.T) {
	exchange := newTestExchange(t, "AAPL")

	nbbo, err := exchange.GetNBBO("AAPL")
	require.NoError(t, err)
	assert.Nil(t, nbbo.Bid)
	assert.Nil(t, nbbo.Ask)

	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 5, 2500, 1))
	require.NoError(t, err)
	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideSell, 5, 2600, 2))
	require.NoError(t, err)

	nbbo, err = exchange.GetNBBO("AAPL")
	require.NoError(t, err)
	require.NotNil(t, nbbo.Bid)
	require.NotNil(t, nbbo.Ask)
	assert.Equal(t, int32(2500), *nbbo.Bid)
	assert.Equal(t, int32(2600), *nbbo.Ask)
}

func TestExchange_OrderIDsSpanBooks(t *testing.T) {
	exchange := newTestExchange(t, "AAPL", "MSFT")

	first, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 5, 2500, 1))
	require.NoError(t, err)
	second, err := exchange.AddOrder("MSFT", limitIntent(orderbookv1.SideBuy, 5, 2500, 1))
	require.NoError(t, err)
	third, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 5, 2400, 1))
	require.NoError(t, err)

	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestExchange_ExecutionsAcrossBooksShareQueue(t *testing.T) {
	exchange := newTestExchange(t, "AAPL", "MSFT")

	_, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideSell, 5, 3000, 1))
	require.NoError(t, err)
	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 5, 3000, 2))
	require.NoError(t, err)
	_, err = exchange.AddOrder("MSFT", limitIntent(orderbookv1.SideSell, 7, 4000, 3))
	require.NoError(t, err)
	_, err = exchange.AddOrder("MSFT", limitIntent(orderbookv1.SideBuy, 7, 4000, 4))
	require.NoError(t, err)

	assert.Equal(t, 2, exchange.PendingExecutions())
	first := exchange.PopNextExecution()
	second := exchange.PopNextExecution()
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, "MSFT", second.Symbol)
	assert.Equal(t, first.ID+1, second.ID)
}

func TestExchange_SnapshotRoundTrip(t *testing.T) {
	exchange := newTestExchange(t, "AAPL")

	_, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 10, 4700, 1))
	require.NoError(t, err)
	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 20, 4700, 2))
	require.NoError(t, err)
	_, err = exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideSell, 15, 4800, 3))
	require.NoError(t, err)

	snapshot, err := exchange.CreateSnapshot("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", snapshot.Symbol)
	require.Len(t, snapshot.Orders, 3)
	// Orders are snapshotted in ascending id order.
	assert.Equal(t, uint64(0), snapshot.Orders[0].OrderID)
	assert.Equal(t, uint64(1), snapshot.Orders[1].OrderID)
	assert.Equal(t, uint64(2), snapshot.Orders[2].OrderID)

	restored := newTestExchange(t, "AAPL")
	require.NoError(t, restored.RestoreSnapshot(snapshot))

	book, err := restored.GetBook("AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(30), book.BuySide().Volume())
	assert.Equal(t, int64(15), book.SellSide().Volume())
	level := book.BuySide().FindLevel(4700)
	require.NotNil(t, level)
	assert.Equal(t, uint64(0), level.Head().ID())
	assert.Equal(t, uint64(1), level.Tail().ID())
	assert.NoError(t, book.Validate())

	// New ids continue past the restored ones.
	newID, err := restored.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 1, 4600, 4))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, newID, uint64(3))
}

func TestExchange_RestoreSnapshotValidation(t *testing.T) {
	exchange := newTestExchange(t, "AAPL")

	assert.ErrorIs(t, exchange.RestoreSnapshot(nil), ErrNilSnapshot)

	_, err := exchange.AddOrder("AAPL", limitIntent(orderbookv1.SideBuy, 10, 4700, 1))
	require.NoError(t, err)

	snapshot, err := exchange.CreateSnapshot("AAPL")
	require.NoError(t, err)
	assert.ErrorIs(t, exchange.RestoreSnapshot(snapshot), ErrBookNotRestored)
}

func TestIDAllocator(t *testing.T) {
	t.Run("monotonic from zero", func(t *testing.T) {
		ids := NewIDAllocator()
		assert.Equal(t, uint64(0), ids.NextOrderID())
		assert.Equal(t, uint64(1), ids.NextOrderID())
		assert.Equal(t, uint64(0), ids.NextExecutionID())
		assert.Equal(t, uint64(1), ids.NextExecutionID())
	})

	t.Run("ensure-at-least only moves forward", func(t *testing.T) {
		ids := NewIDAllocator()
		ids.EnsureOrderIDAtLeast(10)
		assert.Equal(t, uint64(10), ids.NextOrderID())

		ids.EnsureOrderIDAtLeast(5)
		assert.Equal(t, uint64(11), ids.NextOrderID())
	})
}
