package remind

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sandeepkv93/remindd/internal/delivery"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/pkg/logger"
)

// RecapWeekday and RecapTime place the weekly recap trigger.
var (
	RecapWeekday = time.Sunday
	RecapTime    = model.TimeOfDay{Hour: 18}
)

// ShiftSource is the read-only boundary to the attendance store, consulted
// when a note links to shifts by id.
type ShiftSource interface {
	Shift(ctx context.Context, id string) (model.Shift, error)
}

type Options struct {
	// HorizonDays is the recurrence horizon (default 7).
	HorizonDays int
	// DepartureLead is subtracted from configured departure times
	// (default 30 minutes).
	DepartureLead time.Duration
	// Shifts resolves shift configs for shift-linked notes. Nil means
	// linked references are skipped with a warning.
	Shifts ShiftSource
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Scheduler is the orchestration hub. Every scheduling pass follows the
// same protocol: read the cached capability snapshot, degrade to the
// fallback notifier when scheduling is unavailable, cancel the owner's
// previous trigger set, verify nothing remains, then register the freshly
// expanded set. Rescheduling is always cancel-then-recreate.
type Scheduler struct {
	mech     delivery.Mechanism
	detector Detector
	fallback Notifier
	shifts   ShiftSource
	log      logger.Logger

	horizonDays   int
	departureLead time.Duration
	now           func() time.Time

	statusMu sync.Mutex
	status   *model.CapabilityStatus

	ownersMu sync.Mutex
	owners   map[string]*sync.Mutex
}

func NewScheduler(mech delivery.Mechanism, detector Detector, fallback Notifier, log logger.Logger, opts Options) *Scheduler {
	if fallback == nil {
		fallback = NopNotifier()
	}
	if log == nil {
		log = logger.Nop()
	}
	horizon := opts.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	lead := opts.DepartureLead
	if lead <= 0 {
		lead = model.DefaultLeadMinutes * time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		mech:          mech,
		detector:      detector,
		fallback:      fallback,
		shifts:        opts.Shifts,
		log:           log,
		horizonDays:   horizon,
		departureLead: lead,
		now:           now,
		owners:        make(map[string]*sync.Mutex),
	}
}

// CapabilityStatus returns the cached status, detecting it on first use.
// The snapshot is never silently recomputed mid-operation.
func (s *Scheduler) CapabilityStatus(ctx context.Context) model.CapabilityStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if s.status == nil {
		status := s.detector.Detect(ctx)
		s.status = &status
	}
	return *s.status
}

// RefreshCapability forces re-evaluation, e.g. after the user granted
// permission from a settings screen.
func (s *Scheduler) RefreshCapability(ctx context.Context) model.CapabilityStatus {
	status := s.detector.Detect(ctx)
	s.statusMu.Lock()
	s.status = &status
	s.statusMu.Unlock()
	return status
}

// ScheduleForShift replaces the shift's departure/check-in/check-out
// trigger set with a fresh expansion. Degraded mode is a success: the user
// gets one in-app notice and nothing is registered.
func (s *Scheduler) ScheduleForShift(ctx context.Context, shift model.Shift) error {
	if err := shift.Validate(); err != nil {
		return err
	}
	defer s.lockOwner("shift:" + shift.ID)()

	status := s.CapabilityStatus(ctx)
	if !status.CanSchedule() {
		s.fallback.Notify(primaryKind(shift), fmt.Sprintf(
			"Reminders for %s cannot be scheduled: %s", shift.DisplayName(), status.Message))
		return nil
	}

	s.cancelOwner(ctx, shiftOwner(shift.ID))

	for _, occ := range Expand(shift, s.horizonDays, s.departureLead, s.now()) {
		trig := delivery.Trigger{
			ID: ShiftTriggerID(occ.Kind, shift.ID, occ.DayOffset),
			At: occ.At,
			Payload: delivery.Payload{
				Title: shiftTitle(occ.Kind, shift),
				Body:  shiftBody(occ.Kind, shift),
				Kind:  occ.Kind,
				Meta: map[string]string{
					"shift_id":   shift.ID,
					"day_offset": strconv.Itoa(occ.DayOffset),
				},
			},
		}
		s.register(ctx, trig)
	}
	return nil
}

// CancelForShift removes every trigger in the shift's namespace, recaps
// included. Used when the shift is deleted.
func (s *Scheduler) CancelForShift(ctx context.Context, shiftID string) error {
	defer s.lockOwner("shift:" + shiftID)()
	s.cancelOwner(ctx, shiftOwnerAll(shiftID))
	return nil
}

// ScheduleForNote replaces the note's trigger set: a one-shot trigger when
// RemindAt is in the future, plus an independent expansion per linked
// shift. An expired one-shot registers nothing and stays silent; it is
// expired, not degraded.
func (s *Scheduler) ScheduleForNote(ctx context.Context, note model.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}
	defer s.lockOwner("note:" + note.ID)()

	now := s.now()
	status := s.CapabilityStatus(ctx)
	if !status.CanSchedule() {
		if noteHasUpcoming(note, now) {
			s.fallback.Notify(model.KindNote, fmt.Sprintf(
				"Reminder %q cannot be scheduled: %s", note.DisplayTitle(), status.Message))
		}
		return nil
	}

	s.cancelOwner(ctx, noteOwner(note.ID))

	if note.RemindAt != nil && note.RemindAt.After(now) {
		s.register(ctx, delivery.Trigger{
			ID: NoteTriggerID(note.ID),
			At: *note.RemindAt,
			Payload: delivery.Payload{
				Title: note.DisplayTitle(),
				Body:  note.Body,
				Kind:  model.KindNote,
				Meta:  map[string]string{"note_id": note.ID},
			},
		})
	}

	for _, shiftID := range note.ShiftIDs {
		if s.shifts == nil {
			s.log.Warnf("note %s links shift %s but no shift source is configured", note.ID, shiftID)
			continue
		}
		shift, err := s.shifts.Shift(ctx, shiftID)
		if err != nil {
			s.log.Warnf("note %s: load shift %s: %v", note.ID, shiftID, err)
			continue
		}
		// Each referenced shift expands on its own; near-identical instants
		// across shifts are kept, not merged.
		for _, occ := range expandLinked(shift, s.horizonDays, note.Lead(), now) {
			s.register(ctx, delivery.Trigger{
				ID: NoteShiftTriggerID(note.ID, shiftID, occ.DayOffset),
				At: occ.At,
				Payload: delivery.Payload{
					Title: note.DisplayTitle(),
					Body:  note.Body,
					Kind:  model.KindNoteShift,
					Meta: map[string]string{
						"note_id":    note.ID,
						"shift_id":   shiftID,
						"day_offset": strconv.Itoa(occ.DayOffset),
					},
				},
			})
		}
	}
	return nil
}

// CancelForNote removes every trigger in the note's namespace. Used when
// the note is deleted.
func (s *Scheduler) CancelForNote(ctx context.Context, noteID string) error {
	defer s.lockOwner("note:" + noteID)()
	s.cancelOwner(ctx, noteOwner(noteID))
	return nil
}

// ScheduleWeeklyRecap registers the shift's weekly recap triggers. Recap is
// a background-only kind: when scheduling is unavailable the pass returns
// silently, because an immediate notice would masquerade as the recap
// itself firing early.
func (s *Scheduler) ScheduleWeeklyRecap(ctx context.Context, shift model.Shift) error {
	if err := shift.Validate(); err != nil {
		return err
	}
	defer s.lockOwner("recap:" + shift.ID)()

	status := s.CapabilityStatus(ctx)
	if !status.CanSchedule() {
		return nil
	}

	s.cancelOwner(ctx, recapOwner(shift.ID))

	now := s.now()
	base := startOfDay(now)
	for offset := 0; offset < s.horizonDays; offset++ {
		day := base.AddDate(0, 0, offset)
		if day.Weekday() != RecapWeekday {
			continue
		}
		at, err := ResolveInstant(day, RecapTime, false, StartEndRollover)
		if err != nil || !at.After(now) {
			continue
		}
		s.register(ctx, delivery.Trigger{
			ID: RecapTriggerID(shift.ID, offset),
			At: at,
			Payload: delivery.Payload{
				Title: fmt.Sprintf("Weekly recap: %s", shift.DisplayName()),
				Body:  "Review last week's check-ins and check-outs.",
				Kind:  model.KindRecap,
				Meta: map[string]string{
					"shift_id":   shift.ID,
					"day_offset": strconv.Itoa(offset),
				},
			},
		})
	}
	return nil
}

// FindConflicts delegates to the conflict detector.
func (s *Scheduler) FindConflicts(entries []ConflictEntry, bucketWidth time.Duration) *ConflictSummary {
	return FindConflicts(entries, bucketWidth)
}

// register attempts one trigger and never fails the batch: a reminder for
// day 3 of 7 must not be lost because day 1 failed.
func (s *Scheduler) register(ctx context.Context, trig delivery.Trigger) {
	if err := s.mech.RegisterTrigger(ctx, trig); err != nil {
		s.log.Errorf("register trigger %s: %v", trig.ID, err)
	}
}

// cancelOwner removes every registered trigger in the owner's namespace,
// then re-queries and force-cancels anything that survived, since the trigger
// store may be eventually consistent with respect to cancellation. All
// failures here are logged and non-fatal; the new registration proceeds
// and the next pass corrects any leftover duplicate.
func (s *Scheduler) cancelOwner(ctx context.Context, owner ownerMatcher) {
	s.cancelMatching(ctx, owner, "cancel")

	ids, err := s.mech.ListTriggerIDs(ctx)
	if err != nil {
		s.log.Warnf("verify cancellation: %v", err)
		return
	}
	for _, id := range ids {
		if owner.matches(id) {
			if err := s.mech.CancelTrigger(ctx, id); err != nil {
				s.log.Warnf("force-cancel trigger %s: %v", id, err)
			}
		}
	}
}

func (s *Scheduler) cancelMatching(ctx context.Context, owner ownerMatcher, stage string) {
	ids, err := s.mech.ListTriggerIDs(ctx)
	if err != nil {
		s.log.Warnf("%s: list triggers: %v", stage, err)
		return
	}
	for _, id := range ids {
		if owner.matches(id) {
			if err := s.mech.CancelTrigger(ctx, id); err != nil {
				s.log.Warnf("%s trigger %s: %v", stage, id, err)
			}
		}
	}
}

// lockOwner serializes scheduling passes per owner; the cancel-then-
// recreate protocol is not safe under concurrent execution for the same
// owner. Passes for different owners proceed independently.
func (s *Scheduler) lockOwner(key string) func() {
	s.ownersMu.Lock()
	mu, ok := s.owners[key]
	if !ok {
		mu = &sync.Mutex{}
		s.owners[key] = mu
	}
	s.ownersMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// expandLinked anchors a note's reminders to the shift's departure times,
// falling back to the start time when no departure is configured.
func expandLinked(shift model.Shift, horizonDays int, lead time.Duration, now time.Time) []Occurrence {
	anchor := shift
	anchor.Start, anchor.End = nil, nil
	if anchor.Departure == nil {
		anchor.Departure = shift.Start
	}
	if anchor.Departure == nil {
		return nil
	}
	return Expand(anchor, horizonDays, lead, now)
}

func noteHasUpcoming(note model.Note, now time.Time) bool {
	if note.RemindAt != nil && note.RemindAt.After(now) {
		return true
	}
	return len(note.ShiftIDs) > 0
}

func primaryKind(shift model.Shift) model.TriggerKind {
	switch {
	case shift.Start != nil:
		return model.KindCheckIn
	case shift.Departure != nil:
		return model.KindDeparture
	default:
		return model.KindCheckOut
	}
}

func shiftTitle(kind model.TriggerKind, shift model.Shift) string {
	switch kind {
	case model.KindDeparture:
		return fmt.Sprintf("Time to leave for %s", shift.DisplayName())
	case model.KindCheckIn:
		return fmt.Sprintf("Check in: %s", shift.DisplayName())
	default:
		return fmt.Sprintf("Check out: %s", shift.DisplayName())
	}
}

func shiftBody(kind model.TriggerKind, shift model.Shift) string {
	switch kind {
	case model.KindDeparture:
		if shift.Departure != nil {
			return fmt.Sprintf("Departure at %s", shift.Departure)
		}
	case model.KindCheckIn:
		if shift.Start != nil {
			return fmt.Sprintf("Shift starts at %s", shift.Start)
		}
	default:
		if shift.End != nil {
			return fmt.Sprintf("Shift ends at %s", shift.End)
		}
	}
	return ""
}
