package workday

import "sort"

// DaySet is a duplicate-free collection of Dates. Membership is decided by
// date equality, never by the identity of the timestamp a Date came from.
// Mutating methods return a new set and leave the receiver untouched, so a
// caller can hold on to the old value until a persist succeeds.
type DaySet []Date

// Contains reports whether the set holds a date equal to d.
func (s DaySet) Contains(d Date) bool {
	for _, e := range s {
		if e == d {
			return true
		}
	}
	return false
}

// Add returns a set containing d. If a date-equal entry already exists the
// original set is returned unchanged and added is false (add is idempotent).
func (s DaySet) Add(d Date) (result DaySet, added bool) {
	if s.Contains(d) {
		return s, false
	}
	out := make(DaySet, len(s), len(s)+1)
	copy(out, s)
	return append(out, d), true
}

// Remove returns a set with every date-equal entry deleted. removed is
// false if no entry matched.
func (s DaySet) Remove(d Date) (result DaySet, removed bool) {
	out := make(DaySet, 0, len(s))
	for _, e := range s {
		if e == d {
			removed = true
			continue
		}
		out = append(out, e)
	}
	if !removed {
		return s, false
	}
	return out, true
}

// Sorted returns the dates in chronological order.
func (s DaySet) Sorted() []Date {
	out := make([]Date, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Clone returns an independent copy of the set.
func (s DaySet) Clone() DaySet {
	out := make(DaySet, len(s))
	copy(out, s)
	return out
}
