package remind

import "github.com/sandeepkv93/remindd/internal/model"

// Notifier shows an immediate in-app notice when a reminder cannot be
// scheduled in the background. Best effort: implementations swallow their
// own failures, because the operation they stand in for already completed
// in degraded mode. Never invoked for background-only kinds.
type Notifier interface {
	Notify(kind model.TriggerKind, message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(model.TriggerKind, string) {}

// NopNotifier discards fallback notices.
func NopNotifier() Notifier {
	return nopNotifier{}
}
