package orderbookv1

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxPriceCents bounds admissible limit prices so that a fill notional of
// price × shares stays far away from int64 overflow.
const maxPriceCents = 1 << 30

// PriceFromDecimal converts a wire price (decimal quote units, two fractional
// digits) to internal cents.
func PriceFromDecimal(s string) (int32, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal price", ErrInvalidPrice, s)
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(maxPriceCents)) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPrice, s)
	}
	return int32(cents.IntPart()), nil
}

// PriceToDecimal renders internal cents as the wire representation: decimal
// quote units with two fractional digits.
func PriceToDecimal(price int32) string {
	return decimal.New(int64(price), -2).StringFixed(2)
}

// AvgPriceToDecimal renders a volume-weighted average price (cents, possibly
// fractional) as decimal quote units with two fractional digits.
func AvgPriceToDecimal(avg float64) string {
	return decimal.NewFromFloat(avg).Div(decimal.NewFromInt(100)).StringFixed(2)
}
