package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookSide(t *testing.T) {
	side := NewBookSide(SideBuy)

	assert.Equal(t, SideBuy, side.Side())
	assert.Equal(t, int64(0), side.Volume())
	assert.Equal(t, 0, side.Levels())
	assert.Nil(t, side.BestLevel())

	_, ok := side.BestPrice()
	assert.False(t, ok)
}

func TestBookSide_AddResting(t *testing.T) {
	t.Run("creates level on first order at a price", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		order := createTestOrder(0, 1, SideBuy, 3, 2509)

		require.NoError(t, side.AddResting(order))

		assert.Equal(t, int64(3), side.Volume())
		assert.Equal(t, 1, side.Levels())
		level := side.FindLevel(2509)
		require.NotNil(t, level)
		assert.Equal(t, 1, level.OrderCount())
		assert.Equal(t, int64(3), level.TotalVolume())
		assert.NoError(t, side.Validate())
	})

	t.Run("reuses level for same price", func(t *testing.T) {
		side := NewBookSide(SideSell)
		require.NoError(t, side.AddResting(createTestOrder(0, 1, SideSell, 10, 3000)))
		require.NoError(t, side.AddResting(createTestOrder(1, 2, SideSell, 5, 3000)))

		assert.Equal(t, 1, side.Levels())
		assert.Equal(t, int64(15), side.Volume())
		assert.Equal(t, int64(15), side.FindLevel(3000).TotalVolume())
	})

	t.Run("rejects nil order", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		assert.ErrorIs(t, side.AddResting(nil), ErrNilOrder)
	})
}

func TestBookSide_BestPrice(t *testing.T) {
	t.Run("buy side best is the highest price", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		require.NoError(t, side.AddResting(createTestOrder(0, 1, SideBuy, 10, 4500)))
		require.NoError(t, side.AddResting(createTestOrder(1, 2, SideBuy, 10, 4700)))
		require.NoError(t, side.AddResting(createTestOrder(2, 3, SideBuy, 10, 4600)))

		best, ok := side.BestPrice()
		require.True(t, ok)
		assert.Equal(t, int32(4700), best)
	})

	t.Run("sell side best is the lowest price", func(t *testing.T) {
		side := NewBookSide(SideSell)
		require.NoError(t, side.AddResting(createTestOrder(0, 1, SideSell, 10, 4500)))
		require.NoError(t, side.AddResting(createTestOrder(1, 2, SideSell, 10, 4700)))
		require.NoError(t, side.AddResting(createTestOrder(2, 3, SideSell, 10, 4300)))

		best, ok := side.BestPrice()
		require.True(t, ok)
		assert.Equal(t, int32(4300), best)
	})
}

func TestBookSide_RemoveOrder(t *testing.T) {
	t.Run("keeps level while other orders rest", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		order1 := createTestOrder(0, 1, SideBuy, 10, 4700)
		order2 := createTestOrder(1, 2, SideBuy, 20, 4700)
		require.NoError(t, side.AddResting(order1))
		require.NoError(t, side.AddResting(order2))

		require.NoError(t, side.RemoveOrder(order1))

		assert.Equal(t, int64(20), side.Volume())
		assert.Equal(t, 1, side.Levels())
		assert.NoError(t, side.Validate())
	})

	t.Run("drops level and recomputes best when level empties", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		order1 := createTestOrder(0, 1, SideBuy, 10, 4700)
		order2 := createTestOrder(1, 2, SideBuy, 20, 4500)
		require.NoError(t, side.AddResting(order1))
		require.NoError(t, side.AddResting(order2))

		require.NoError(t, side.RemoveOrder(order1))

		assert.Nil(t, side.FindLevel(4700))
		best, ok := side.BestPrice()
		require.True(t, ok)
		assert.Equal(t, int32(4500), best)
		assert.NoError(t, side.Validate())
	})

	t.Run("rejects unlinked order", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		assert.ErrorIs(t, side.RemoveOrder(createTestOrder(0, 1, SideBuy, 10, 4700)), ErrOrderNotInLevel)
	})
}

func TestBookSide_ScanBestFirst(t *testing.T) {
	t.Run("buy side scans descending", func(t *testing.T) {
		side := NewBookSide(SideBuy)
		for i, price := range []int32{4500, 4700, 4600} {
			require.NoError(t, side.AddResting(createTestOrder(uint64(i), 1, SideBuy, 10, price)))
		}

		var prices []int32
		side.ScanBestFirst(func(level *PriceLevel) bool {
			prices = append(prices, level.Price())
			return true
		})
		assert.Equal(t, []int32{4700, 4600, 4500}, prices)
	})

	t.Run("sell side scans ascending", func(t *testing.T) {
		side := NewBookSide(SideSell)
		for i, price := range []int32{4500, 4700, 4600} {
			require.NoError(t, side.AddResting(createTestOrder(uint64(i), 1, SideSell, 10, price)))
		}

		var prices []int32
		side.ScanBestFirst(func(level *PriceLevel) bool {
			prices = append(prices, level.Price())
			return true
		})
		assert.Equal(t, []int32{4500, 4600, 4700}, prices)
	})

	t.Run("stops when iterator returns false", func(t *testing.T) {
		side := NewBookSide(SideSell)
		for i, price := range []int32{4500, 4700, 4600} {
			require.NoError(t, side.AddResting(createTestOrder(uint64(i), 1, SideSell, 10, price)))
		}

		seen := 0
		side.ScanBestFirst(func(level *PriceLevel) bool {
			seen++
			return false
		})
		assert.Equal(t, 1, seen)
	})
}

func TestBookSide_Validate(t *testing.T) {
	side := NewBookSide(SideBuy)
	require.NoError(t, side.AddResting(createTestOrder(0, 1, SideBuy, 10, 4700)))

	side.volume = 99
	assert.Error(t, side.Validate())
}
