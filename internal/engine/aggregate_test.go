package engine_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/christopherklint97/balancr/internal/engine"
	"github.com/christopherklint97/balancr/internal/toggl"
)

func entry(start string, duration int64) toggl.TimeEntry {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return toggl.TimeEntry{Start: t, Duration: duration}
}

func TestAggregate(t *testing.T) {
	windowStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 6, 7, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []toggl.TimeEntry
		want    float64
	}{
		{
			name: "sums durations into decimal hours",
			entries: []toggl.TimeEntry{
				entry("2024-06-03T10:00:00Z", 3600),
				entry("2024-06-03T12:00:00Z", 7200),
			},
			want: 3.0,
		},
		{
			name: "entries outside the window are excluded",
			entries: []toggl.TimeEntry{
				entry("2024-05-31T23:00:00Z", 3600),
				entry("2024-06-03T10:00:00Z", 3600),
				entry("2024-06-07T16:00:00Z", 3600),
			},
			want: 1.0,
		},
		{
			name: "window boundaries are inclusive",
			entries: []toggl.TimeEntry{
				entry("2024-06-01T00:00:00Z", 3600),
				entry("2024-06-07T15:00:00Z", 1800),
			},
			want: 1.5,
		},
		{
			name: "running and broken entries count as zero",
			entries: []toggl.TimeEntry{
				entry("2024-06-03T10:00:00Z", -1717408800), // running entry marker
				entry("2024-06-03T12:00:00Z", 0),
				entry("2024-06-03T14:00:00Z", 1800),
			},
			want: 0.5,
		},
		{
			name: "fractional hours are preserved",
			entries: []toggl.TimeEntry{
				entry("2024-06-03T10:00:00Z", 900),
			},
			want: 0.25,
		},
		{
			name: "no entries",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Aggregate(tt.entries, windowStart, windowEnd)
			if got != tt.want {
				t.Errorf("Aggregate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	windowStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	entries := []toggl.TimeEntry{
		entry("2024-06-03T10:00:00Z", 3600),
		entry("2024-06-04T10:00:00Z", 5400),
		entry("2024-06-05T10:00:00Z", 900),
		entry("2024-06-06T10:00:00Z", 7200),
	}
	want := engine.Aggregate(entries, windowStart, windowEnd)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(entries), func(a, b int) {
			entries[a], entries[b] = entries[b], entries[a]
		})
		if got := engine.Aggregate(entries, windowStart, windowEnd); got != want {
			t.Fatalf("Aggregate after shuffle = %v, want %v", got, want)
		}
	}
}
