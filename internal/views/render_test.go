package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/delivery"
	"github.com/sandeepkv93/remindd/internal/model"
)

func TestRenderFallbackNoticeContainsKindAndMessage(t *testing.T) {
	out := RenderFallbackNotice(model.KindNote, "Reminder cannot be scheduled")
	if !strings.Contains(out, "note") {
		t.Fatalf("expected kind in notice, got: %q", out)
	}
	if !strings.Contains(out, "Reminder cannot be scheduled") {
		t.Fatalf("expected message in notice, got: %q", out)
	}
}

func TestRenderFiredTrigger(t *testing.T) {
	trig := delivery.Trigger{
		ID: "checkin_shift-1_0",
		Payload: delivery.Payload{
			Title: "Check in: Day shift",
			Body:  "Shift starts at 08:00",
			Kind:  model.KindCheckIn,
		},
	}
	firedAt := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)

	out := RenderFiredTrigger(trig, firedAt, false)
	if !strings.Contains(out, "Check in: Day shift") || !strings.Contains(out, "checkin_shift-1_0") {
		t.Fatalf("unexpected render: %q", out)
	}
	if strings.Contains(out, "missed") {
		t.Fatalf("unexpected missed marker: %q", out)
	}

	missed := RenderFiredTrigger(trig, firedAt, true)
	if !strings.Contains(missed, "missed") {
		t.Fatalf("expected missed marker: %q", missed)
	}
}

func TestRenderCapabilityStatus(t *testing.T) {
	status := model.CapabilityStatus{
		Platform: "linux",
		Message:  "notification permission has not been granted",
		Recommendations: []string{
			"grant permission (remindd grant) and refresh the status",
		},
	}
	out := RenderCapabilityStatus(status)
	if !strings.Contains(out, "unavailable") {
		t.Fatalf("expected unavailable state, got: %q", out)
	}
	if !strings.Contains(out, "grant permission") {
		t.Fatalf("expected recommendation, got: %q", out)
	}

	ready := RenderCapabilityStatus(model.CapabilityStatus{Supported: true, HasPermission: true, Message: "ok"})
	if !strings.Contains(ready, "ready") {
		t.Fatalf("expected ready state, got: %q", ready)
	}
}

func TestConsoleNotifierWritesNotice(t *testing.T) {
	var buf bytes.Buffer
	n := ConsoleNotifier{Out: &buf}
	n.Notify(model.KindCheckIn, "degraded")
	if !strings.Contains(buf.String(), "degraded") {
		t.Fatalf("expected notice written, got: %q", buf.String())
	}

	// A nil writer must not panic; the notice is best effort.
	ConsoleNotifier{}.Notify(model.KindCheckIn, "degraded")
}
