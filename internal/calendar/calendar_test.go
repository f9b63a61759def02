package calendar_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/christopherklint97/balancr/internal/calendar"
	"github.com/christopherklint97/balancr/internal/workday"
)

const testICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//holidays//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday-1\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240605\r\n" +
	"DTEND;VALUE=DATE:20240606\r\n" +
	"SUMMARY:Constitution Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday-2\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20241224\r\n" +
	"DTEND;VALUE=DATE:20241227\r\n" +
	"SUMMARY:Christmas\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday-3\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20230605\r\n" +
	"DTEND;VALUE=DATE:20230606\r\n" +
	"SUMMARY:Last year\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func writeICS(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.ics")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHolidaysFromFile(t *testing.T) {
	path := writeICS(t, testICS)

	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	dates, err := calendar.Holidays(context.Background(), path, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("Holidays failed: %v", err)
	}

	want := []workday.Date{
		{Year: 2024, Month: time.June, Day: 5},
		{Year: 2024, Month: time.December, Day: 24},
		{Year: 2024, Month: time.December, Day: 25},
		{Year: 2024, Month: time.December, Day: 26},
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates %v, want %d", len(dates), dates, len(want))
	}
	got := make(map[workday.Date]bool)
	for _, d := range dates {
		got[d] = true
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing %v", w)
		}
	}
	if got[workday.Date{Year: 2023, Month: time.June, Day: 5}] {
		t.Error("event outside the window was included")
	}
}

func TestHolidaysWindowFilter(t *testing.T) {
	path := writeICS(t, testICS)

	// Narrow window covering only June.
	windowStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)

	dates, err := calendar.Holidays(context.Background(), path, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("Holidays failed: %v", err)
	}
	if len(dates) != 1 || dates[0] != (workday.Date{Year: 2024, Month: time.June, Day: 5}) {
		t.Errorf("dates = %v, want only 2024-06-05", dates)
	}
}

func TestHolidaysMissingFile(t *testing.T) {
	_, err := calendar.Holidays(context.Background(), filepath.Join(t.TempDir(), "nope.ics"), time.Now(), time.Now())
	if err == nil || !strings.Contains(err.Error(), "opening calendar file") {
		t.Errorf("err = %v, want opening calendar file error", err)
	}
}
