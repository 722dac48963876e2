package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Google is a Google Calendar client over two calendars: the daily
// teaching schedule and the project milestones calendar.
type Google struct {
	svc        *gcal.Service
	scheduleID string
	projectsID string
	loc        *time.Location
}

// NewGoogle builds an authenticated client. Runs are non-interactive
// (cron), so the OAuth token file must already exist; obtaining it is a
// one-time manual step.
func NewGoogle(ctx context.Context, credentialsPath, tokenPath, scheduleID, projectsID string, loc *time.Location) (*Google, error) {
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar credentials %s: %w", credentialsPath, err)
	}

	conf, err := google.ConfigFromJSON(creds, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar credentials: %w", err)
	}

	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("calendar token unavailable (run the one-time authorization first): %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}

	if scheduleID == "" {
		scheduleID = "primary"
	}
	if projectsID == "" {
		projectsID = "primary"
	}
	if loc == nil {
		loc = time.Local
	}

	return &Google{svc: svc, scheduleID: scheduleID, projectsID: projectsID, loc: loc}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

// TodayEvents returns today's events from the schedule calendar, in
// start order.
func (g *Google) TodayEvents(ctx context.Context, now time.Time) ([]Event, error) {
	day := now.In(g.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, g.loc)
	return g.listEvents(ctx, g.scheduleID, start, start.AddDate(0, 0, 1))
}

// Milestones returns events from the projects calendar due within the
// next days days.
func (g *Google) Milestones(ctx context.Context, now time.Time, days int) ([]Event, error) {
	return g.listEvents(ctx, g.projectsID, now, now.AddDate(0, 0, days))
}

// CreateMilestone adds a one-hour milestone event to the projects
// calendar unless it would overlap an existing event; overlaps are
// returned as conflicts and nothing is written.
func (g *Google) CreateMilestone(ctx context.Context, title string, due time.Time) (*CreateResult, error) {
	end := due.Add(time.Hour)

	conflicts, err := g.listEvents(ctx, g.projectsID, due, end)
	if err != nil {
		return nil, fmt.Errorf("conflict check failed: %w", err)
	}
	if len(conflicts) > 0 {
		return &CreateResult{Created: false, Conflicts: conflicts}, nil
	}

	ev := &gcal.Event{
		Summary: "[MILESTONE] " + title,
		Start: &gcal.EventDateTime{
			DateTime: due.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.In(g.loc).Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
	}

	created, err := g.svc.Events.Insert(g.projectsID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone event: %w", err)
	}

	parsed := parseEvent(created)
	return &CreateResult{Created: true, Event: &parsed}, nil
}

func (g *Google) listEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	res, err := g.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", calendarID, err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, parseEvent(item))
	}
	return events, nil
}

func parseEvent(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
	}
	if ev.Summary == "" {
		ev.Summary = "Untitled"
	}
	ev.Start, ev.AllDay = parseEventTime(item.Start)
	ev.End, _ = parseEventTime(item.End)
	return ev
}

// parseEventTime handles both timed events (dateTime) and all-day
// events (date).
func parseEventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, false
	}
	if edt.Date != "" {
		t, err := time.Parse("2006-01-02", edt.Date)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}
