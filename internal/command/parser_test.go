package command

import (
	"testing"
	"time"
)

func TestParseKnownPrefixes(t *testing.T) {
	cases := []struct {
		subject string
		kind    Kind
		payload string
	}{
		{"NUDGE: Print CO2 car rubrics", KindNudge, "Print CO2 car rubrics"},
		{"nudge:  Grade essays by Friday", KindNudge, "Grade essays by Friday"},
		{"ADD NUDGE: Print rubrics tomorrow at 7:15am", KindNudge, "Print rubrics tomorrow at 7:15am"},
		{"MILESTONE: CDR slides due Feb 10", KindMilestone, "CDR slides due Feb 10"},
		{"add milestone: Robotics demo next Monday", KindMilestone, "Robotics demo next Monday"},
		{"Note: Period 3 needs more solder", KindNote, "Period 3 needs more solder"},
		{"NOTE:    trailing and leading   ", KindNote, "trailing and leading"},
		{"[TA] NUDGE: Collect permission slips", KindNudge, "Collect permission slips"},
	}

	for _, tc := range cases {
		got := Parse(tc.subject)
		if got.Kind != tc.kind {
			t.Errorf("Parse(%q).Kind = %q, want %q", tc.subject, got.Kind, tc.kind)
		}
		if got.Payload != tc.payload {
			t.Errorf("Parse(%q).Payload = %q, want %q", tc.subject, got.Payload, tc.payload)
		}
		if got.Raw != tc.subject {
			t.Errorf("Parse(%q).Raw = %q, want original subject", tc.subject, got.Raw)
		}
	}
}

func TestParseStatusQuery(t *testing.T) {
	for _, subject := range []string{"TODAY?", "today?", "Today?", "  TODAY?  ", "TODAY", "[TA] today?"} {
		got := Parse(subject)
		if got.Kind != KindStatusQuery {
			t.Errorf("Parse(%q).Kind = %q, want status_query", subject, got.Kind)
		}
		if got.Payload != "" {
			t.Errorf("Parse(%q).Payload = %q, want empty", subject, got.Payload)
		}
	}
}

func TestParseUnrecognized(t *testing.T) {
	for _, subject := range []string{
		"",
		"Re: staff meeting",
		"NUDGE Grade essays", // missing colon
		"REMINDER: something",
		"TODAY? and more text",
		"[TA] fwd: newsletter",
	} {
		got := Parse(subject)
		if got.Kind != KindUnrecognized {
			t.Errorf("Parse(%q).Kind = %q, want unrecognized", subject, got.Kind)
		}
	}
}

func TestDueTime(t *testing.T) {
	now := time.Date(2025, 1, 31, 6, 0, 0, 0, time.UTC)

	due, ok := DueTime("Print rubrics tomorrow at 7:15am", now)
	if !ok {
		t.Fatal("expected a due time for 'tomorrow at 7:15am'")
	}
	if due.Day() != 1 || due.Month() != time.February {
		t.Errorf("expected Feb 1, got %v", due)
	}
	if due.Hour() != 7 || due.Minute() != 15 {
		t.Errorf("expected 07:15, got %02d:%02d", due.Hour(), due.Minute())
	}

	if _, ok := DueTime("Grade essays", now); ok {
		t.Error("expected no due time for payload without a date")
	}
}
