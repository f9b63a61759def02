package workday

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day component. Two Dates are
// equal iff year, month and day match, regardless of where the underlying
// timestamps came from.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO-8601 date string (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Weekday returns the day of week for d.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Category classifies a day by how many work hours it requires.
type Category int

const (
	FullWorkday Category = iota
	HalfDay
	Holiday
	Weekend
)

func (c Category) String() string {
	switch c {
	case FullWorkday:
		return "workday"
	case HalfDay:
		return "half day"
	case Holiday:
		return "holiday"
	case Weekend:
		return "weekend"
	default:
		return "unknown"
	}
}

// Schedule holds the required hours per day category.
type Schedule struct {
	WeekdayHours float64
	FridayHours  float64
	HalfDayHours float64
}

// DefaultSchedule is a 44-hour week: nine hours Monday through Thursday,
// eight on Friday, five on declared half days.
func DefaultSchedule() Schedule {
	return Schedule{
		WeekdayHours: 9,
		FridayHours:  8,
		HalfDayHours: 5,
	}
}

// Classify returns the category of date and the hours it requires.
// A date present in both sets counts as a holiday: declared holidays
// override half days, which override the weekday rule.
func Classify(date Date, holidays, halfDays DaySet, sched Schedule) (Category, float64) {
	if holidays.Contains(date) {
		return Holiday, 0
	}
	if halfDays.Contains(date) {
		return HalfDay, sched.HalfDayHours
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend, 0
	case time.Friday:
		return FullWorkday, sched.FridayHours
	default:
		return FullWorkday, sched.WeekdayHours
	}
}

// ExpectedHours sums the required hours for every day from the 1st of
// today's month through today, inclusive. The current day counts in full
// even if it has only partially elapsed.
func ExpectedHours(today Date, holidays, halfDays DaySet, sched Schedule) float64 {
	var total float64
	for day := 1; day <= today.Day; day++ {
		d := Date{Year: today.Year, Month: today.Month, Day: day}
		_, hours := Classify(d, holidays, halfDays, sched)
		total += hours
	}
	return total
}
