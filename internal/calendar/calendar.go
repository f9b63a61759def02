// Package calendar reads holiday dates out of iCalendar feeds, so public
// holiday calendars published as ICS can be imported into the holiday set.
package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/balancr/internal/workday"
)

// Holidays retrieves and parses an iCalendar feed from a URL or file path
// and returns the dates of events overlapping [windowStart, windowEnd].
// A multi-day event contributes every date it spans inside the window.
// Malformed events are skipped.
func Holidays(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]workday.Date, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	return decodeHolidays(r, windowStart, windowEnd)
}

func decodeHolidays(r io.Reader, windowStart, windowEnd time.Time) ([]workday.Date, error) {
	dec := ical.NewDecoder(r)
	var dates []workday.Date
	seen := make(map[workday.Date]bool)
	lo, hi := workday.DateOf(windowStart), workday.DateOf(windowEnd)

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(nil)
			if err != nil {
				continue // skip malformed events
			}
			end, err := event.DateTimeEnd(nil)
			if err != nil || !end.After(start) {
				end = start
			}

			// All-day events end at midnight of the following day; back
			// the end off so that day is not counted.
			last := end
			if !last.After(start) {
				last = start
			} else {
				last = last.Add(-time.Second)
			}

			for d := workday.DateOf(start); !workday.DateOf(last).Before(d); d = nextDate(d) {
				if d.Before(lo) || hi.Before(d) {
					continue
				}
				if !seen[d] {
					seen[d] = true
					dates = append(dates, d)
				}
			}
		}
	}

	return dates, nil
}

func nextDate(d workday.Date) workday.Date {
	return workday.DateOf(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1))
}
