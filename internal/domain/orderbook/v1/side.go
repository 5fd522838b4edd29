package orderbookv1

import (
	"fmt"

	"github.com/tidwall/btree"
)

// BookSide holds every price level of one side of a book in a sorted map
// keyed by price, plus the aggregate side volume. The best price is the map
// extremum: the highest key on the buy side, the lowest on the sell side.
type BookSide struct {
	side   Side
	levels *btree.Map[int32, *PriceLevel]
	volume int64
}

// NewBookSide creates an empty side.
func NewBookSide(side Side) *BookSide {
	return &BookSide{
		side:   side,
		levels: btree.NewMap[int32, *PriceLevel](32),
	}
}

// Side returns which side of the book this is.
func (s *BookSide) Side() Side { return s.side }

// Volume returns the total open shares resting on this side.
func (s *BookSide) Volume() int64 { return s.volume }

// Levels returns the number of non-empty price levels.
func (s *BookSide) Levels() int { return s.levels.Len() }

// FindLevel returns the level at the given price, nil if absent.
func (s *BookSide) FindLevel(price int32) *PriceLevel {
	level, ok := s.levels.Get(price)
	if !ok {
		return nil
	}
	return level
}

// findOrCreateLevel returns the level at the given price, creating it if
// this is the first order at that price.
func (s *BookSide) findOrCreateLevel(price int32) *PriceLevel {
	if level, ok := s.levels.Get(price); ok {
		return level
	}
	level := NewPriceLevel(price)
	s.levels.Set(price, level)
	return level
}

// BestLevel returns the best level of the side: the highest bid or the
// lowest ask. Returns nil when the side is empty.
func (s *BookSide) BestLevel() *PriceLevel {
	var level *PriceLevel
	var ok bool
	if s.side == SideBuy {
		_, level, ok = s.levels.Max()
	} else {
		_, level, ok = s.levels.Min()
	}
	if !ok {
		return nil
	}
	return level
}

// BestPrice returns the best price of the side; ok is false when the side is
// empty.
func (s *BookSide) BestPrice() (int32, bool) {
	level := s.BestLevel()
	if level == nil {
		return 0, false
	}
	return level.price, true
}

// AddResting links a resting order into its level, creating the level if
// needed, and folds the order into the side volume.
func (s *BookSide) AddResting(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	level := s.findOrCreateLevel(order.price)
	if err := level.Append(order); err != nil {
		if level.IsEmpty() {
			s.levels.Delete(level.price)
		}
		return err
	}
	s.volume += order.shares
	return nil
}

// RemoveOrder unlinks an order from its level, dropping the level if it
// empties, and removes the order's open shares from the side volume.
func (s *BookSide) RemoveOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	level := order.level
	if level == nil {
		return ErrOrderNotInLevel
	}
	if err := level.Unlink(order); err != nil {
		return err
	}
	s.volume -= order.shares
	if level.IsEmpty() {
		s.levels.Delete(level.price)
	}
	return nil
}

// removeLevel drops an emptied level from the side. Calling it with a
// non-empty level is an internal inconsistency.
func (s *BookSide) removeLevel(level *PriceLevel) {
	if !level.IsEmpty() {
		panic(fmt.Sprintf("orderbook: removing non-empty level %d on %s side", level.price, s.side))
	}
	s.levels.Delete(level.price)
}

// AdjustVolume shifts the side total when an order's open shares change in
// place.
func (s *BookSide) AdjustVolume(delta int64) {
	s.volume += delta
}

// ScanBestFirst iterates the levels in matching order: descending prices on
// the buy side, ascending on the sell side. Iteration stops when iter
// returns false.
func (s *BookSide) ScanBestFirst(iter func(level *PriceLevel) bool) {
	if s.side == SideBuy {
		s.levels.Reverse(func(_ int32, level *PriceLevel) bool {
			return iter(level)
		})
		return
	}
	s.levels.Scan(func(_ int32, level *PriceLevel) bool {
		return iter(level)
	})
}

// Validate checks the side invariants: every present level is non-empty and
// internally consistent, and the side volume equals the sum of level
// volumes.
func (s *BookSide) Validate() error {
	var volume int64
	var err error
	s.levels.Scan(func(price int32, level *PriceLevel) bool {
		if level.price != price {
			err = fmt.Errorf("%s side: level keyed %d carries price %d", s.side, price, level.price)
			return false
		}
		if level.IsEmpty() {
			err = fmt.Errorf("%s side: empty level %d present", s.side, price)
			return false
		}
		if lerr := level.Validate(); lerr != nil {
			err = fmt.Errorf("%s side: %w", s.side, lerr)
			return false
		}
		volume += level.totalVolume
		return true
	})
	if err != nil {
		return err
	}
	if volume != s.volume {
		return fmt.Errorf("%s side: volume mismatch: levels %d, stored %d", s.side, volume, s.volume)
	}
	return nil
}
