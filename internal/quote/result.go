package quote

import (
	"encoding/json"
	"time"
)

// Comparison is the current price measured against one reference close.
type Comparison struct {
	Price         float64
	Change        float64
	ChangePercent float64
}

// FixedDate is a hardcoded calendar date used for long-horizon comparisons.
type FixedDate struct {
	Key          string
	Target       time.Time
	PriceField   string
	ChangeField  string
	PercentField string
}

// fixedDates are compared on every quote.
var fixedDates = [...]FixedDate{
	{
		Key:          "april1_2025",
		Target:       time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		PriceField:   "priceApril1_2025",
		ChangeField:  "changeApril1",
		PercentField: "changePercentApril1",
	},
	{
		Key:          "october1_2025",
		Target:       time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		PriceField:   "priceOctober1_2025",
		ChangeField:  "changeOctober1",
		PercentField: "changePercentOctober1",
	},
	{
		Key:          "december1_2025",
		Target:       time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		PriceField:   "priceDecember1_2025",
		ChangeField:  "changeDecember1",
		PercentField: "changePercentDecember1",
	},
}

// FixedDates returns the fixed comparison dates, oldest first. The slice is a
// copy.
func FixedDates() []FixedDate {
	out := make([]FixedDate, len(fixedDates))
	copy(out, fixedDates[:])
	return out
}

// Result is the normalized quote returned by every provider.
type Result struct {
	Symbol        string
	Name          string
	Price         float64
	Currency      string
	Change        float64
	ChangePercent float64
	// Timestamp is the trading date of Price (YYYY-MM-DD).
	Timestamp string

	FiveDays   *Comparison
	ThirtyDays *Comparison
	// Fixed is keyed by FixedDate.Key and only holds dates that resolved.
	Fixed map[string]Comparison
}

// Compare builds a Comparison of the result's current price against ref.
func (r *Result) Compare(ref float64) Comparison {
	c, pct := Change(r.Price, ref)
	return Comparison{Price: ref, Change: c, ChangePercent: pct}
}

// Attach fills the 5-day, 30-day and fixed-date comparisons from s.
// s must be ordered newest first; r.Price is used as the current price.
func Attach(r *Result, s Series) {
	if len(s) > 5 {
		c := r.Compare(s[5].Close)
		r.FiveDays = &c
	}
	if len(s) > 30 {
		c := r.Compare(s[30].Close)
		r.ThirtyDays = &c
	}

	prices := s.Prices()
	for _, fd := range fixedDates {
		date, ok := FindClosestDate(prices, fd.Target)
		if !ok {
			continue
		}
		if r.Fixed == nil {
			r.Fixed = make(map[string]Comparison, len(fixedDates))
		}
		r.Fixed[fd.Key] = r.Compare(prices[date])
	}
}

// MarshalJSON renders the canonical response shape. Comparisons that did not
// resolve are left out entirely.
func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"symbol":        r.Symbol,
		"name":          r.Name,
		"price":         r.Price,
		"currency":      r.Currency,
		"change":        r.Change,
		"changePercent": r.ChangePercent,
		"timestamp":     r.Timestamp,
	}
	if c := r.FiveDays; c != nil {
		out["price5DaysAgo"] = c.Price
		out["change5Days"] = c.Change
		out["changePercent5Days"] = c.ChangePercent
	}
	if c := r.ThirtyDays; c != nil {
		out["price30DaysAgo"] = c.Price
		out["change30Days"] = c.Change
		out["changePercent30Days"] = c.ChangePercent
	}
	for _, fd := range fixedDates {
		c, ok := r.Fixed[fd.Key]
		if !ok {
			continue
		}
		out[fd.PriceField] = c.Price
		out[fd.ChangeField] = c.Change
		out[fd.PercentField] = c.ChangePercent
	}
	return json.Marshal(out)
}
