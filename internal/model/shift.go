package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrNoTriggerTimes   = errors.New("model: shift has no reminder times configured")
	ErrDuplicateWeekday = errors.New("model: duplicate weekday in shift")
)

// Shift is the reminder rule derived from a shift's configuration. The
// attendance store owns the shift itself; a Shift value is passed in per
// scheduling pass and never retained.
type Shift struct {
	ID       string
	Name     string
	Weekdays []time.Weekday
	// Departure, Start and End are the configured times of day for the
	// departure, check-in and check-out reminders. Nil means the reminder
	// kind is not configured.
	Departure *TimeOfDay
	Start     *TimeOfDay
	End       *TimeOfDay
	// CrossesMidnight marks night shifts whose active window spans two
	// calendar days.
	CrossesMidnight bool
}

func (s Shift) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: shift id is required")
	}
	if s.Departure == nil && s.Start == nil && s.End == nil {
		return fmt.Errorf("%w: %q", ErrNoTriggerTimes, s.ID)
	}
	for _, tod := range []*TimeOfDay{s.Departure, s.Start, s.End} {
		if tod == nil {
			continue
		}
		if err := tod.Validate(); err != nil {
			return err
		}
	}
	if len(s.Weekdays) > 1 {
		days := make([]int, 0, len(s.Weekdays))
		for _, d := range s.Weekdays {
			days = append(days, int(d))
		}
		sort.Ints(days)
		for i := 1; i < len(days); i++ {
			if days[i] == days[i-1] {
				return fmt.Errorf("%w: %s", ErrDuplicateWeekday, time.Weekday(days[i]))
			}
		}
	}
	return nil
}

func (s Shift) ActiveOn(d time.Weekday) bool {
	for _, w := range s.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// DisplayName falls back to the id when the shift has no name.
func (s Shift) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.ID
}
