package remind

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/remindd/internal/model"
)

// Trigger identifier scheme. The exact formats are load-bearing: owner
// cancellation matches against them, so idempotent re-registration only
// works while they stay stable.
//
//	<kind>_<shiftID>_<dayOffset>            recurring shift triggers
//	note_<noteID>                           one-shot note reminders
//	note_shift_<noteID>_<shiftID>_<offset>  shift-linked note reminders
//	recap_<shiftID>_<dayOffset>             weekly recap triggers

func ShiftTriggerID(kind model.TriggerKind, shiftID string, dayOffset int) string {
	return fmt.Sprintf("%s_%s_%d", kind, shiftID, dayOffset)
}

func NoteTriggerID(noteID string) string {
	return "note_" + noteID
}

func NoteShiftTriggerID(noteID, shiftID string, dayOffset int) string {
	return fmt.Sprintf("note_shift_%s_%s_%d", noteID, shiftID, dayOffset)
}

func RecapTriggerID(shiftID string, dayOffset int) string {
	return fmt.Sprintf("%s_%s_%d", model.KindRecap, shiftID, dayOffset)
}

// ownerMatcher scopes cancellation to one owner's identifier namespace.
// Exact entries guard identifiers that are themselves prefixes of other
// owners' identifiers (note_n1 vs note_n10).
type ownerMatcher struct {
	exact    []string
	prefixes []string
}

func (m ownerMatcher) matches(id string) bool {
	for _, e := range m.exact {
		if id == e {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// shiftOwner covers the three recurring shift trigger kinds, not recaps:
// recaps have their own scheduling pass and must survive a shift reschedule.
func shiftOwner(shiftID string) ownerMatcher {
	return ownerMatcher{prefixes: []string{
		string(model.KindDeparture) + "_" + shiftID + "_",
		string(model.KindCheckIn) + "_" + shiftID + "_",
		string(model.KindCheckOut) + "_" + shiftID + "_",
	}}
}

func recapOwner(shiftID string) ownerMatcher {
	return ownerMatcher{prefixes: []string{string(model.KindRecap) + "_" + shiftID + "_"}}
}

// shiftOwnerAll is used when the shift itself is deleted.
func shiftOwnerAll(shiftID string) ownerMatcher {
	owner := shiftOwner(shiftID)
	owner.prefixes = append(owner.prefixes, recapOwner(shiftID).prefixes...)
	return owner
}

func noteOwner(noteID string) ownerMatcher {
	return ownerMatcher{
		exact:    []string{NoteTriggerID(noteID)},
		prefixes: []string{"note_shift_" + noteID + "_"},
	}
}
