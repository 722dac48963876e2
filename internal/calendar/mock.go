package calendar

import (
	"context"
	"time"
)

// Mock is an in-memory calendar for --test runs and unit tests. It
// records milestone creations and reports conflicts for any proposed
// event that overlaps a seeded one.
type Mock struct {
	Schedule  []Event
	Projects  []Event
	CreatedMs []Event
}

// NewMock seeds a plausible school day relative to now.
func NewMock(now time.Time) *Mock {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &Mock{
		Schedule: []Event{
			{
				ID:      "mock-sched-1",
				Summary: "Period 1 - Engineering Design",
				Start:   day.Add(8 * time.Hour),
				End:     day.Add(9*time.Hour + 30*time.Minute),
			},
			{
				ID:      "mock-sched-2",
				Summary: "Period 3 - Robotics",
				Start:   day.Add(10*time.Hour + 30*time.Minute),
				End:     day.Add(12 * time.Hour),
			},
		},
		Projects: []Event{
			{
				ID:      "mock-proj-1",
				Summary: "[MILESTONE] CDR Slides Due",
				Start:   day.AddDate(0, 0, 5).Add(16 * time.Hour),
				End:     day.AddDate(0, 0, 5).Add(17 * time.Hour),
			},
		},
	}
}

func (m *Mock) TodayEvents(ctx context.Context, now time.Time) ([]Event, error) {
	return m.Schedule, nil
}

func (m *Mock) Milestones(ctx context.Context, now time.Time, days int) ([]Event, error) {
	cutoff := now.AddDate(0, 0, days)
	var out []Event
	for _, ev := range m.Projects {
		if !ev.Start.Before(now) && ev.Start.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Mock) CreateMilestone(ctx context.Context, title string, due time.Time) (*CreateResult, error) {
	end := due.Add(time.Hour)
	var conflicts []Event
	for _, ev := range m.Projects {
		if ev.Start.Before(end) && due.Before(ev.End) {
			conflicts = append(conflicts, ev)
		}
	}
	if len(conflicts) > 0 {
		return &CreateResult{Created: false, Conflicts: conflicts}, nil
	}

	ev := Event{
		ID:      "mock-created",
		Summary: "[MILESTONE] " + title,
		Start:   due,
		End:     end,
	}
	m.Projects = append(m.Projects, ev)
	m.CreatedMs = append(m.CreatedMs, ev)
	return &CreateResult{Created: true, Event: &ev}, nil
}
