package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/christopherklint97/balancr/internal/calendar"
	"github.com/christopherklint97/balancr/internal/store"
	"github.com/christopherklint97/balancr/internal/workday"
)

// parseDateArg accepts an ISO date (2006-01-02) or natural language like
// "yesterday" and "last friday".
func parseDateArg(arg string) (workday.Date, error) {
	if d, err := workday.ParseDate(arg); err == nil {
		return d, nil
	}
	t, err := naturaldate.Parse(arg, time.Now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return workday.Date{}, fmt.Errorf("unrecognized date %q (use 2006-01-02 or e.g. \"last friday\")", arg)
	}
	return workday.DateOf(t), nil
}

func newAddCmd(kind string, add func(*store.DaySetStore, workday.Date) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "add <date>...",
		Short: fmt.Sprintf("Declare one or more %ss", kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			db, days, err := openDaySets(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, arg := range args {
				d, err := parseDateArg(arg)
				if err != nil {
					return err
				}
				added, err := add(days, d)
				if err != nil {
					return fmt.Errorf("saving %s: %w", kind, err)
				}
				if added {
					fmt.Printf("Added %s %s\n", kind, d)
				} else {
					fmt.Printf("%s already marked as %s\n", d, kind)
				}
			}
			return nil
		},
	}
}

func newRemoveCmd(kind string, remove func(*store.DaySetStore, workday.Date) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>...",
		Short: fmt.Sprintf("Remove declared %ss", kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			db, days, err := openDaySets(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, arg := range args {
				d, err := parseDateArg(arg)
				if err != nil {
					return err
				}
				removed, err := remove(days, d)
				if err != nil {
					return fmt.Errorf("saving %s: %w", kind, err)
				}
				if removed {
					fmt.Printf("Removed %s %s\n", kind, d)
				} else {
					fmt.Printf("%s was not marked as %s\n", d, kind)
				}
			}
			return nil
		},
	}
}

func newListCmd(kind string, list func(*store.DaySetStore) workday.DaySet) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List declared %ss", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			db, days, err := openDaySets(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			set := list(days)
			if len(set) == 0 {
				fmt.Printf("No %ss declared.\n", kind)
				return nil
			}
			for _, d := range set.Sorted() {
				fmt.Printf("  %s  %s\n", d, strings.ToLower(d.Weekday().String()))
			}
			return nil
		},
	}
}

var importCmd = &cobra.Command{
	Use:   "import <url-or-file>",
	Short: "Import holidays from an iCalendar feed",
	Long:  "Adds every event date from the given ICS feed (current calendar year) to the holiday set.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		db, days, err := openDaySets(logger)
		if err != nil {
			return err
		}
		defer db.Close()

		now := time.Now()
		yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		yearEnd := time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, now.Location())

		dates, err := calendar.Holidays(cmd.Context(), args[0], yearStart, yearEnd)
		if err != nil {
			return fmt.Errorf("importing holidays: %w", err)
		}

		added := 0
		for _, d := range dates {
			ok, err := days.AddHoliday(d)
			if err != nil {
				return fmt.Errorf("saving holiday: %w", err)
			}
			if ok {
				added++
			}
		}

		fmt.Printf("Imported %d holidays (%d new)\n", len(dates), added)
		return nil
	},
}
