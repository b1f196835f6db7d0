package quote

import "time"

// DateLayout is the calendar date format used for every series key.
const DateLayout = "2006-01-02"

// maxAlignDays bounds how far FindClosestDate looks around the target.
const maxAlignDays = 7

// FindClosestDate returns the available date nearest to target within ±7 days.
// Candidates are probed as 0, +1, -1, +2, -2 ... so at equal distance the later
// date wins.
func FindClosestDate[V any](available map[string]V, target time.Time) (string, bool) {
	if len(available) == 0 {
		return "", false
	}
	for delta := 0; delta <= maxAlignDays; delta++ {
		for _, dir := range [2]int{1, -1} {
			if delta == 0 && dir < 0 {
				continue
			}
			candidate := target.AddDate(0, 0, delta*dir).Format(DateLayout)
			if _, ok := available[candidate]; ok {
				return candidate, true
			}
		}
	}
	return "", false
}
