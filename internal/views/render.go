// Package views renders the daemon's console output: fallback notices,
// fired triggers and the capability status summary.
package views

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/remindd/internal/delivery"
	"github.com/sandeepkv93/remindd/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func RenderFallbackNotice(kind model.TriggerKind, message string) string {
	header := titleStyle.Render(fmt.Sprintf("Reminder (%s)", kind))
	return noticeStyle.Render(header + "\n" + message)
}

func RenderFiredTrigger(t delivery.Trigger, firedAt time.Time, missed bool) string {
	header := titleStyle.Render(t.Payload.Title)
	if missed {
		header = errorStyle.Render("missed ") + header
	}
	lines := []string{header}
	if t.Payload.Body != "" {
		lines = append(lines, t.Payload.Body)
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s · %s", t.ID, firedAt.Format("Mon 15:04"))))
	return noticeStyle.Render(strings.Join(lines, "\n"))
}

func RenderCapabilityStatus(status model.CapabilityStatus) string {
	var state string
	if status.CanSchedule() {
		state = okStyle.Render("ready")
	} else {
		state = errorStyle.Render("unavailable")
	}
	lines := []string{
		titleStyle.Render("Reminder scheduling: ") + state,
		status.Message,
		mutedStyle.Render("platform: " + status.Platform),
	}
	for _, rec := range status.Recommendations {
		lines = append(lines, "  - "+rec)
	}
	return strings.Join(lines, "\n")
}

// ConsoleNotifier is the in-app fallback surface: it prints a styled notice
// synchronously. Write failures are swallowed; the scheduling operation
// this stands in for already completed in degraded mode.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n ConsoleNotifier) Notify(kind model.TriggerKind, message string) {
	if n.Out == nil {
		return
	}
	_, _ = fmt.Fprintln(n.Out, RenderFallbackNotice(kind, message))
}
