package engine

import (
	"time"

	"github.com/christopherklint97/balancr/internal/toggl"
)

// Aggregate sums the durations of the entries whose start timestamp falls
// in [start, end] inclusive, in decimal hours. Entries with a missing or
// negative duration (Toggl reports running entries that way) contribute
// nothing rather than failing the whole aggregation. The result is not
// rounded.
func Aggregate(entries []toggl.TimeEntry, start, end time.Time) float64 {
	var total float64
	for _, e := range entries {
		if e.Start.Before(start) || e.Start.After(end) {
			continue
		}
		if e.Duration <= 0 {
			continue
		}
		total += float64(e.Duration) / 3600
	}
	return total
}
