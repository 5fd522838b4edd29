package orderbookv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIntent_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		intent  OrderIntent
		wantErr error
	}{
		{
			name:   "valid limit buy",
			intent: OrderIntent{Side: SideBuy, Type: OrderTypeLimit, Shares: 10, Price: 2500, ClientID: 7},
		},
		{
			name:   "valid market sell",
			intent: OrderIntent{Side: SideSell, Type: OrderTypeMarket, Shares: 5, Price: MarketPrice},
		},
		{
			name:    "zero shares",
			intent:  OrderIntent{Side: SideBuy, Type: OrderTypeLimit, Shares: 0, Price: 2500},
			wantErr: ErrInvalidSize,
		},
		{
			name:    "negative shares",
			intent:  OrderIntent{Side: SideBuy, Type: OrderTypeLimit, Shares: -3, Price: 2500},
			wantErr: ErrInvalidSize,
		},
		{
			name:    "limit without price",
			intent:  OrderIntent{Side: SideBuy, Type: OrderTypeLimit, Shares: 10, Price: 0},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "negative limit price",
			intent:  OrderIntent{Side: SideSell, Type: OrderTypeLimit, Shares: 10, Price: -2500},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "market with price",
			intent:  OrderIntent{Side: SideBuy, Type: OrderTypeMarket, Shares: 10, Price: 2500},
			wantErr: ErrPriceOnMarket,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.intent.Validate()
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("creates resting order from intent", func(t *testing.T) {
		entry := time.Now()
		order, err := NewOrder(OrderIntent{
			Side:     SideSell,
			Type:     OrderTypeLimit,
			Shares:   14,
			Price:    4570,
			ClientID: 45,
		}, 3, entry)

		require.NoError(t, err)
		assert.Equal(t, uint64(3), order.ID())
		assert.Equal(t, uint32(45), order.ClientID())
		assert.Equal(t, SideSell, order.Side())
		assert.Equal(t, OrderTypeLimit, order.Type())
		assert.Equal(t, int32(4570), order.Price())
		assert.Equal(t, int64(14), order.Shares())
		assert.Equal(t, int64(0), order.Filled())
		assert.Equal(t, entry, order.EntryTime())
	})

	t.Run("rejects invalid intent", func(t *testing.T) {
		_, err := NewOrder(OrderIntent{Side: SideBuy, Type: OrderTypeLimit, Shares: -1, Price: 100}, 0, time.Now())
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
}

func TestOrder_AddFill(t *testing.T) {
	order := createTestOrder(0, 1, SideBuy, 7, 4000)

	order.addFill(3, 3000)
	assert.Equal(t, int64(4), order.Shares())
	assert.Equal(t, int64(3), order.Filled())
	assert.InDelta(t, 3000.0, order.AvgPrice(), 1e-9)

	order.addFill(4, 4000)
	assert.Equal(t, int64(0), order.Shares())
	assert.Equal(t, int64(7), order.Filled())
	assert.InDelta(t, (3*3000.0+4*4000.0)/7, order.AvgPrice(), 1e-9)
}

func TestOrder_AvgPrice_NoFills(t *testing.T) {
	order := createTestOrder(0, 1, SideBuy, 7, 4000)
	assert.Equal(t, 0.0, order.AvgPrice())
}

func TestSide_Opposite(t *testing.T) {
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}
