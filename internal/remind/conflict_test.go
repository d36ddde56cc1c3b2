package remind

import (
	"testing"
	"time"
)

func at(t time.Time) *time.Time { return &t }

func TestFindConflictsWithinBucket(t *testing.T) {
	base := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	entries := []ConflictEntry{
		{Label: "a", At: at(base)},
		{Label: "b", At: at(base.Add(3 * time.Minute))},
	}
	summary := FindConflicts(entries, 5*time.Minute)
	if summary == nil {
		t.Fatal("expected a conflict for reminders 3 minutes apart")
	}
	if summary.Groups != 1 || summary.Involved != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestFindConflictsOutsideBucket(t *testing.T) {
	base := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	entries := []ConflictEntry{
		{Label: "a", At: at(base)},
		{Label: "b", At: at(base.Add(10 * time.Minute))},
	}
	if summary := FindConflicts(entries, 5*time.Minute); summary != nil {
		t.Fatalf("expected no conflict 10 minutes apart, got: %+v", summary)
	}
}

func TestFindConflictsExcludesUnresolvedInstants(t *testing.T) {
	base := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	entries := []ConflictEntry{
		{Label: "resolved", At: at(base)},
		{Label: "pending"},
		{Label: "also-pending"},
	}
	if summary := FindConflicts(entries, 5*time.Minute); summary != nil {
		t.Fatalf("expected unresolved reminders to be excluded, got: %+v", summary)
	}
}

func TestFindConflictsMultipleGroups(t *testing.T) {
	morning := time.Date(2026, 9, 7, 8, 0, 30, 0, time.UTC)
	evening := time.Date(2026, 9, 7, 18, 0, 30, 0, time.UTC)
	entries := []ConflictEntry{
		{Label: "a", At: at(morning)},
		{Label: "b", At: at(morning.Add(time.Minute))},
		{Label: "c", At: at(morning.Add(2 * time.Minute))},
		{Label: "d", At: at(evening)},
		{Label: "e", At: at(evening.Add(time.Minute))},
	}
	summary := FindConflicts(entries, 5*time.Minute)
	if summary == nil {
		t.Fatal("expected conflicts")
	}
	if summary.Groups != 2 || summary.Involved != 5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestFindConflictsDefaultsBucketWidth(t *testing.T) {
	base := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	entries := []ConflictEntry{
		{Label: "a", At: at(base)},
		{Label: "b", At: at(base.Add(time.Minute))},
	}
	if summary := FindConflicts(entries, 0); summary == nil {
		t.Fatal("expected default bucket width to detect the conflict")
	}
}
