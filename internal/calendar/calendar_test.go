package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	gcal "google.golang.org/api/calendar/v3"
)

func TestParseEvent(t *testing.T) {
	item := &gcal.Event{
		Id:      "abc",
		Summary: "Period 1 - Engineering Design",
		Start:   &gcal.EventDateTime{DateTime: "2025-01-31T08:00:00-06:00"},
		End:     &gcal.EventDateTime{DateTime: "2025-01-31T09:30:00-06:00"},
	}

	got := parseEvent(item)

	loc := time.FixedZone("", -6*3600)
	want := Event{
		ID:      "abc",
		Summary: "Period 1 - Engineering Design",
		Start:   time.Date(2025, 1, 31, 8, 0, 0, 0, loc),
		End:     time.Date(2025, 1, 31, 9, 30, 0, 0, loc),
	}

	if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
		t.Errorf("Times mismatch: got %v-%v, want %v-%v", got.Start, got.End, want.Start, want.End)
	}
	got.Start, got.End = time.Time{}, time.Time{}
	want.Start, want.End = time.Time{}, time.Time{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Event mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEventAllDay(t *testing.T) {
	item := &gcal.Event{
		Id:    "allday",
		Start: &gcal.EventDateTime{Date: "2025-02-05"},
		End:   &gcal.EventDateTime{Date: "2025-02-06"},
	}

	got := parseEvent(item)
	if !got.AllDay {
		t.Error("Expected all-day event")
	}
	if got.Summary != "Untitled" {
		t.Errorf("Expected Untitled fallback, got %q", got.Summary)
	}
	if got.Start.Day() != 5 {
		t.Errorf("Expected day 5, got %d", got.Start.Day())
	}
}

func TestMockConflictDetection(t *testing.T) {
	now := time.Date(2025, 1, 31, 6, 0, 0, 0, time.UTC)
	m := NewMock(now)
	ctx := context.Background()

	// Overlaps the seeded CDR milestone.
	busy := m.Projects[0].Start.Add(30 * time.Minute)
	res, err := m.CreateMilestone(ctx, "Conflicting Demo", busy)
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if res.Created || len(res.Conflicts) != 1 {
		t.Errorf("Expected 1 conflict and no creation, got %+v", res)
	}
	if len(m.CreatedMs) != 0 {
		t.Error("Conflicting milestone must not be recorded as created")
	}

	// A free slot succeeds.
	res, err = m.CreateMilestone(ctx, "Essay Drafts", now.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if !res.Created || res.Event == nil {
		t.Errorf("Expected creation, got %+v", res)
	}
	if res.Event.Summary != "[MILESTONE] Essay Drafts" {
		t.Errorf("Unexpected summary %q", res.Event.Summary)
	}

	ms, err := m.Milestones(ctx, now, 14)
	if err != nil {
		t.Fatalf("Milestones failed: %v", err)
	}
	if len(ms) != 2 {
		t.Errorf("Expected 2 milestones within 14 days, got %d", len(ms))
	}
}
