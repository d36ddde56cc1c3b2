package model

import "errors"

var ErrInvalidTriggerKind = errors.New("model: invalid trigger kind")

type TriggerKind string

const (
	KindDeparture TriggerKind = "departure"
	KindCheckIn   TriggerKind = "checkin"
	KindCheckOut  TriggerKind = "checkout"
	KindNote      TriggerKind = "note"
	KindNoteShift TriggerKind = "note_shift"
	KindRecap     TriggerKind = "recap"
)

func (k TriggerKind) IsValid() bool {
	switch k {
	case KindDeparture, KindCheckIn, KindCheckOut, KindNote, KindNoteShift, KindRecap:
		return true
	default:
		return false
	}
}

// Background reports whether a kind exists only to fire unattended at a
// future moment. Degraded mode must stay silent for these: an immediate
// in-app notice would read as the reminder firing at the wrong time.
func (k TriggerKind) Background() bool {
	return k == KindRecap
}
