package agent

import (
	"fmt"
	"strings"

	"teachmate/internal/calendar"
	"teachmate/internal/store"
)

// The formatters below render store and calendar state as the plain
// bullet lists the prompts embed. Keep them boring: the LLM sees this
// text verbatim.

func formatEvents(events []calendar.Event) string {
	if len(events) == 0 {
		return "No events scheduled."
	}
	var b strings.Builder
	for _, ev := range events {
		if ev.AllDay {
			fmt.Fprintf(&b, "- (all day): %s\n", ev.Summary)
			continue
		}
		fmt.Fprintf(&b, "- %s-%s: %s\n", ev.Start.Format("15:04"), ev.End.Format("15:04"), ev.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMilestones(milestones []store.Milestone) string {
	if len(milestones) == 0 {
		return "No upcoming milestones."
	}
	var b strings.Builder
	for _, m := range milestones {
		fmt.Fprintf(&b, "- %s: %s", m.DueAt.Format("Mon Jan 2"), m.Title)
		if m.RiskFlag {
			b.WriteString(" [AT RISK")
			if m.RiskNote != "" {
				b.WriteString(": " + m.RiskNote)
			}
			b.WriteString("]")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNudges(nudges []store.Nudge) string {
	if len(nudges) == 0 {
		return "No active reminders."
	}
	var b strings.Builder
	for _, n := range nudges {
		if n.Priority == store.PriorityHigh || n.Priority == store.PriorityUrgent {
			b.WriteString("- [URGENT] ")
		} else {
			b.WriteString("- ")
		}
		b.WriteString(n.Content)
		if !n.DueAt.IsZero() {
			fmt.Fprintf(&b, " (due %s)", n.DueAt.Format("Mon Jan 2 15:04"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNotes(notes []store.Note) string {
	if len(notes) == 0 {
		return "No recent notes."
	}
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "- [%s] %s\n", n.CreatedAt.Format("2006-01-02"), n.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
