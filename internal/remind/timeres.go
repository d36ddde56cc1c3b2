// Package remind converts shift and note reminder rules into concrete
// triggers and manages their lifecycle against the delivery mechanism.
package remind

import (
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

// RolloverPolicy controls how a time of day maps to a calendar day for
// shifts whose active window crosses midnight.
type RolloverPolicy struct {
	// AdvanceBelowHour: hours strictly below this belong to the day after
	// the nominal shift date (an early-morning check-out of a night shift).
	AdvanceBelowHour int
	// RecedeFromHour: hours at or above this belong to the day before the
	// nominal shift date. Set past 23 to disable receding.
	RecedeFromHour int
}

var (
	// StartEndRollover applies to check-in and check-out times.
	StartEndRollover = RolloverPolicy{AdvanceBelowHour: 12, RecedeFromHour: 24}
	// DepartureRollover additionally pulls late-evening departure times
	// back onto the previous calendar day. Start/end times never recede.
	DepartureRollover = RolloverPolicy{AdvanceBelowHour: 12, RecedeFromHour: 18}
)

// ResolveInstant combines a calendar date with a wall-clock time to produce
// an absolute instant, applying the midnight rollover for night shifts.
// A malformed time of day yields model.ErrMalformedTime; callers skip that
// occurrence rather than aborting the expansion.
func ResolveInstant(date time.Time, tod model.TimeOfDay, crossesMidnight bool, pol RolloverPolicy) (time.Time, error) {
	if err := tod.Validate(); err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	instant := time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, date.Location())
	if !crossesMidnight {
		return instant, nil
	}
	switch {
	case tod.Hour < pol.AdvanceBelowHour:
		instant = instant.AddDate(0, 0, 1)
	case tod.Hour >= pol.RecedeFromHour:
		instant = instant.AddDate(0, 0, -1)
	}
	return instant, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
