package quote

import "sort"

// Point is one trading day's closing price.
type Point struct {
	Date  string
	Close float64
}

// Series is a daily close history ordered newest first.
type Series []Point

// NewSeries orders points newest first. When a date repeats, the first
// occurrence in the input is kept.
func NewSeries(points []Point) Series {
	seen := make(map[string]struct{}, len(points))
	out := make(Series, 0, len(points))
	for _, p := range points {
		if _, dup := seen[p.Date]; dup {
			continue
		}
		seen[p.Date] = struct{}{}
		out = append(out, p)
	}
	// YYYY-MM-DD sorts lexically
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Latest returns the newest point.
func (s Series) Latest() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[0], true
}

// Prices maps each date to its close.
func (s Series) Prices() map[string]float64 {
	m := make(map[string]float64, len(s))
	for _, p := range s {
		m[p.Date] = p.Close
	}
	return m
}
