package remind

import (
	"fmt"
	"time"
)

// DefaultConflictWindow is the bucket width used when the caller passes a
// non-positive width.
const DefaultConflictWindow = 5 * time.Minute

// ConflictEntry is one currently-relevant reminder as seen by the conflict
// detector. Filtering to relevant reminders (not hidden, snoozed or
// expired) is the caller's job. A nil At excludes the entry: a recurring
// reminder without a resolved next instant cannot collide.
type ConflictEntry struct {
	Label string
	At    *time.Time
}

type ConflictSummary struct {
	Groups   int
	Involved int
}

func (s ConflictSummary) String() string {
	return fmt.Sprintf("%d reminders fall within the same time window (%d overlapping groups)", s.Involved, s.Groups)
}

// FindConflicts buckets each instant into floor(unix / width) and reports
// every bucket holding two or more reminders. Returns nil when nothing
// overlaps.
func FindConflicts(entries []ConflictEntry, bucketWidth time.Duration) *ConflictSummary {
	if bucketWidth <= 0 {
		bucketWidth = DefaultConflictWindow
	}
	widthSec := int64(bucketWidth / time.Second)

	buckets := make(map[int64]int)
	for _, e := range entries {
		if e.At == nil {
			continue
		}
		buckets[e.At.Unix()/widthSec]++
	}

	var summary ConflictSummary
	for _, count := range buckets {
		if count >= 2 {
			summary.Groups++
			summary.Involved += count
		}
	}
	if summary.Groups == 0 {
		return nil
	}
	return &summary
}
