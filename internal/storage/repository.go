package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// TriggerStore persists registered triggers and scheduler settings so the
// delivery engine can rebuild its queue after a restart.
type TriggerStore interface {
	PutTrigger(ctx context.Context, in Trigger) error
	GetTrigger(ctx context.Context, id string) (Trigger, error)
	DeleteTrigger(ctx context.Context, id string) error
	ListTriggerIDs(ctx context.Context) ([]string, error)
	ListTriggers(ctx context.Context) ([]Trigger, error)

	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error

	Ping(ctx context.Context) error
}
