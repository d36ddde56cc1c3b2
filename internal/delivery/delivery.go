// Package delivery is the boundary to the mechanism that holds registered
// triggers and alerts the user when they fire. The core schedules against
// the Mechanism interface only; Engine is the in-process reference
// implementation used by the daemon.
package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

var (
	ErrInvalidFireTime  = errors.New("delivery: invalid fire time")
	ErrMissingTriggerID = errors.New("delivery: trigger id is required")
)

type Payload struct {
	Title string
	Body  string
	Kind  model.TriggerKind
	Meta  map[string]string
}

// Trigger is the unit registered with the delivery mechanism: a
// deterministic identifier, an absolute fire instant and a payload.
type Trigger struct {
	ID      string
	At      time.Time
	Payload Payload
}

// Mechanism is the external delivery collaborator. Registration with an
// identifier that is already registered replaces the earlier trigger;
// cancellation by identifier removes exactly that trigger.
type Mechanism interface {
	RegisterTrigger(ctx context.Context, t Trigger) error
	CancelTrigger(ctx context.Context, id string) error
	ListTriggerIDs(ctx context.Context) ([]string, error)
	RequestPermission(ctx context.Context) (bool, error)
	Healthy(ctx context.Context) error
}
