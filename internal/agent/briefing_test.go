package agent

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitBriefing(t *testing.T) {
	raw := `Day at a glance: two classes, one urgent reminder.

## EMAIL BRIEFING
...details...

## SMS SUMMARY
2 classes today. Print rubrics. CDR slides Feb 5.`

	b := SplitBriefing(raw)
	if strings.Contains(b.Email, "2 classes today.") {
		t.Error("SMS line leaked into email body")
	}
	if b.SMS != "2 classes today. Print rubrics. CDR slides Feb 5." {
		t.Errorf("Unexpected SMS %q", b.SMS)
	}
	if b.Raw != raw {
		t.Error("Raw output not preserved")
	}
}

func TestSplitBriefingNoSMSSection(t *testing.T) {
	b := SplitBriefing("Just an email briefing with no sections.")
	if b.SMS != fallbackSMS {
		t.Errorf("Expected fallback SMS, got %q", b.SMS)
	}
	if b.Email != "Just an email briefing with no sections." {
		t.Errorf("Unexpected email %q", b.Email)
	}
}

func TestSplitBriefingLongSMSTruncated(t *testing.T) {
	long := strings.Repeat("busy day ", 40)
	b := SplitBriefing("briefing\n\n## SMS SUMMARY\n" + long)
	if len(b.SMS) > SMSLimit {
		t.Errorf("SMS length %d exceeds limit", len(b.SMS))
	}
	if !strings.HasSuffix(b.SMS, "...") {
		t.Errorf("Expected ellipsis on truncation, got %q", b.SMS)
	}
}

func TestTruncateSMS(t *testing.T) {
	if got := TruncateSMS("short"); got != "short" {
		t.Errorf("Short message must pass through, got %q", got)
	}
	long := strings.Repeat("x", 200)
	got := TruncateSMS(long)
	if len(got) != SMSLimit {
		t.Errorf("Expected exactly %d chars, got %d", SMSLimit, len(got))
	}
}

func TestTruncateSMSMultiByte(t *testing.T) {
	// 200 two-byte runes; a byte-index cut would split one in half.
	long := strings.Repeat("é", 200)
	got := TruncateSMS(long)
	if !utf8.ValidString(got) {
		t.Fatalf("Truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != SMSLimit {
		t.Errorf("Expected %d runes, got %d", SMSLimit, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis, got %q", got)
	}
}
