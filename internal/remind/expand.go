package remind

import (
	"sort"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

// DefaultHorizonDays is the recurrence horizon a scheduler uses unless
// configured otherwise.
const DefaultHorizonDays = 7

// Occurrence is one expanded reminder instance. DayOffset is the position
// within the horizon and feeds the deterministic trigger identifier, so
// repeated expansion never registers under a fresh identity.
type Occurrence struct {
	Kind      model.TriggerKind
	DayOffset int
	At        time.Time
}

// Expand produces every future reminder instant of a shift within the
// horizon, ascending by instant. lead is subtracted from departure times.
// Deterministic and side-effect free: the same rule and now always yield
// the same sequence. Instants at or before now are dropped; occurrences
// with a malformed time of day are skipped individually.
func Expand(shift model.Shift, horizonDays int, lead time.Duration, now time.Time) []Occurrence {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	kinds := []struct {
		kind model.TriggerKind
		tod  *model.TimeOfDay
		pol  RolloverPolicy
	}{
		{model.KindDeparture, shift.Departure, DepartureRollover},
		{model.KindCheckIn, shift.Start, StartEndRollover},
		{model.KindCheckOut, shift.End, StartEndRollover},
	}

	base := startOfDay(now)
	out := make([]Occurrence, 0)
	for offset := 0; offset < horizonDays; offset++ {
		day := base.AddDate(0, 0, offset)
		if !shift.ActiveOn(day.Weekday()) {
			continue
		}
		for _, c := range kinds {
			if c.tod == nil {
				continue
			}
			at, err := ResolveInstant(day, *c.tod, shift.CrossesMidnight, c.pol)
			if err != nil {
				continue
			}
			if c.kind == model.KindDeparture {
				at = at.Add(-lead)
			}
			if !at.After(now) {
				continue
			}
			out = append(out, Occurrence{Kind: c.kind, DayOffset: offset, At: at})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At.Before(out[j].At)
	})
	return out
}
