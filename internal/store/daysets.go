package store

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/christopherklint97/balancr/internal/workday"
)

const (
	keyHolidays = "holidays"
	keyHalfDays = "halfDays"
)

// StateStore is the key-value persistence the day sets are written through.
// *DB satisfies it.
type StateStore interface {
	GetState(key string) (string, error)
	SetState(key, value string) error
}

// DaySetStore holds the declared holiday and half-day sets and keeps them
// in sync with the state table. A set is persisted as a JSON array of
// ISO-8601 date strings. Mutations persist before they commit: on a write
// failure the in-memory set is left at its previous value and the error is
// returned to the caller.
type DaySetStore struct {
	kv     StateStore
	logger *slog.Logger

	mu       sync.Mutex
	holidays workday.DaySet
	halfDays workday.DaySet

	changes chan struct{}
}

// NewDaySetStore loads both sets from kv. A missing key yields an empty
// set. A corrupt record also yields an empty set; an individual date that
// fails to parse is discarded and the rest of the record kept.
func NewDaySetStore(kv StateStore, logger *slog.Logger) (*DaySetStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &DaySetStore{
		kv:      kv,
		logger:  logger,
		changes: make(chan struct{}, 1),
	}

	var err error
	if s.holidays, err = s.load(keyHolidays); err != nil {
		return nil, err
	}
	if s.halfDays, err = s.load(keyHalfDays); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DaySetStore) load(key string) (workday.DaySet, error) {
	raw, err := s.kv.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	if raw == "" {
		return workday.DaySet{}, nil
	}

	var isoDates []string
	if err := json.Unmarshal([]byte(raw), &isoDates); err != nil {
		s.logger.Warn("discarding corrupt day set record", "key", key, "error", err)
		return workday.DaySet{}, nil
	}

	set := make(workday.DaySet, 0, len(isoDates))
	for _, iso := range isoDates {
		d, err := workday.ParseDate(iso)
		if err != nil {
			s.logger.Warn("discarding unparseable date", "key", key, "value", iso)
			continue
		}
		if !set.Contains(d) {
			set = append(set, d)
		}
	}
	return set, nil
}

func (s *DaySetStore) persist(key string, set workday.DaySet) error {
	isoDates := make([]string, 0, len(set))
	for _, d := range set.Sorted() {
		isoDates = append(isoDates, d.String())
	}
	data, err := json.Marshal(isoDates)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := s.kv.SetState(key, string(data)); err != nil {
		return fmt.Errorf("persisting %s: %w", key, err)
	}
	return nil
}

// Holidays returns a copy of the holiday set.
func (s *DaySetStore) Holidays() workday.DaySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holidays.Clone()
}

// HalfDays returns a copy of the half-day set.
func (s *DaySetStore) HalfDays() workday.DaySet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halfDays.Clone()
}

// AddHoliday adds d to the holiday set. Adding a date that is already
// present is a no-op reporting added=false; nothing is rewritten.
func (s *DaySetStore) AddHoliday(d workday.Date) (added bool, err error) {
	return s.mutate(keyHolidays, &s.holidays, func(set workday.DaySet) (workday.DaySet, bool) {
		return set.Add(d)
	})
}

// RemoveHoliday removes every entry date-equal to d from the holiday set.
func (s *DaySetStore) RemoveHoliday(d workday.Date) (removed bool, err error) {
	return s.mutate(keyHolidays, &s.holidays, func(set workday.DaySet) (workday.DaySet, bool) {
		return set.Remove(d)
	})
}

// AddHalfDay adds d to the half-day set.
func (s *DaySetStore) AddHalfDay(d workday.Date) (added bool, err error) {
	return s.mutate(keyHalfDays, &s.halfDays, func(set workday.DaySet) (workday.DaySet, bool) {
		return set.Add(d)
	})
}

// RemoveHalfDay removes every entry date-equal to d from the half-day set.
func (s *DaySetStore) RemoveHalfDay(d workday.Date) (removed bool, err error) {
	return s.mutate(keyHalfDays, &s.halfDays, func(set workday.DaySet) (workday.DaySet, bool) {
		return set.Remove(d)
	})
}

func (s *DaySetStore) mutate(key string, current *workday.DaySet, op func(workday.DaySet) (workday.DaySet, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, changed := op(*current)
	if !changed {
		return false, nil
	}
	if err := s.persist(key, updated); err != nil {
		// In-memory set stays at its pre-mutation value.
		return false, err
	}
	*current = updated
	s.notify()
	return true, nil
}

// Changes delivers a signal after every committed mutation. The channel has
// a one-slot buffer; coalesced signals are fine since consumers re-read the
// sets anyway.
func (s *DaySetStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *DaySetStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
