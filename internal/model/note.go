package model

import (
	"errors"
	"strings"
	"time"
)

// DefaultLeadMinutes is the fixed lead subtracted from a departure time,
// both for shift departure reminders and for shift-linked note reminders
// that do not configure their own lead.
const DefaultLeadMinutes = 30

var ErrNegativeLead = errors.New("model: negative reminder lead")

// Note is a note's reminder configuration. RemindAt set means a one-shot
// reminder at an absolute instant. ShiftIDs non-empty means a recurring
// reminder linked to each referenced shift's departure schedule; every
// referenced shift expands independently.
type Note struct {
	ID          string
	Title       string
	Body        string
	RemindAt    *time.Time
	ShiftIDs    []string
	LeadMinutes int
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: note id is required")
	}
	if n.LeadMinutes < 0 {
		return ErrNegativeLead
	}
	return nil
}

// Lead is the configured lead before departure for shift-linked reminders.
func (n Note) Lead() time.Duration {
	if n.LeadMinutes <= 0 {
		return DefaultLeadMinutes * time.Minute
	}
	return time.Duration(n.LeadMinutes) * time.Minute
}

// DisplayTitle falls back to the id when the note has no title.
func (n Note) DisplayTitle() string {
	if strings.TrimSpace(n.Title) != "" {
		return n.Title
	}
	return n.ID
}
