package quote

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Change returns current-previous and the percentage move relative to previous,
// both rounded to 2 decimal places. A zero previous price yields a 0 percent.
func Change(current, previous float64) (delta, percent float64) {
	cur := decimal.NewFromFloat(current)
	prev := decimal.NewFromFloat(previous)
	diff := cur.Sub(prev)

	delta = diff.Round(2).InexactFloat64()
	if prev.IsZero() {
		return delta, 0
	}
	percent = diff.Div(prev).Mul(hundred).Round(2).InexactFloat64()
	return delta, percent
}

// Round2 rounds v half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
