package storage

import "time"

// Trigger is a registered trigger row. Meta carries the structured payload
// metadata for the trigger kind, stored as JSON text.
type Trigger struct {
	ID        string
	FireAt    time.Time
	Title     string
	Body      string
	Kind      string
	Meta      map[string]string
	CreatedAt time.Time
}
