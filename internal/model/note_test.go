package model

import (
	"errors"
	"testing"
	"time"
)

func TestNoteValidateSuccess(t *testing.T) {
	at := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	note := Note{ID: "note-1", Title: "Pay rent", RemindAt: &at}
	if err := note.Validate(); err != nil {
		t.Fatalf("expected valid note, got error: %v", err)
	}
}

func TestNoteValidateRequiresID(t *testing.T) {
	if err := (Note{}).Validate(); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNoteValidateRejectsNegativeLead(t *testing.T) {
	note := Note{ID: "note-1", LeadMinutes: -5}
	if err := note.Validate(); !errors.Is(err, ErrNegativeLead) {
		t.Fatalf("expected ErrNegativeLead, got: %v", err)
	}
}

func TestNoteLeadDefault(t *testing.T) {
	if got := (Note{ID: "note-1"}).Lead(); got != DefaultLeadMinutes*time.Minute {
		t.Fatalf("unexpected default lead: %v", got)
	}
	if got := (Note{ID: "note-1", LeadMinutes: 10}).Lead(); got != 10*time.Minute {
		t.Fatalf("unexpected lead: %v", got)
	}
}

func TestTriggerKindBackground(t *testing.T) {
	if !KindRecap.Background() {
		t.Fatal("expected recap to be background-only")
	}
	for _, k := range []TriggerKind{KindDeparture, KindCheckIn, KindCheckOut, KindNote, KindNoteShift} {
		if k.Background() {
			t.Fatalf("expected %q not background-only", k)
		}
	}
}

func TestCapabilityStatusCanSchedule(t *testing.T) {
	ok := CapabilityStatus{Supported: true, HasPermission: true}
	if !ok.CanSchedule() {
		t.Fatal("expected schedulable status")
	}
	blocked := CapabilityStatus{Supported: true, HasPermission: true, Sandboxed: true, SandboxBlocked: true}
	if blocked.CanSchedule() {
		t.Fatal("expected sandbox-blocked status to be unschedulable")
	}
	noPerm := CapabilityStatus{Supported: true}
	if noPerm.CanSchedule() {
		t.Fatal("expected permissionless status to be unschedulable")
	}
}
