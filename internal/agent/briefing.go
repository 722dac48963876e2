package agent

import "strings"

// SMSLimit is the single-segment SMS length.
const SMSLimit = 160

// fallbackSMS is sent when the composer output has no usable SMS
// section.
const fallbackSMS = "Check email for daily briefing."

// Briefing is the composer's output split into its two delivery
// formats.
type Briefing struct {
	Email string
	SMS   string
	Raw   string
}

// SplitBriefing separates the composer output into the email body and
// the SMS line. The model is asked for an "## SMS" section; when it
// doesn't comply the whole output becomes the email and the SMS falls
// back to a pointer at the inbox.
func SplitBriefing(result string) *Briefing {
	b := &Briefing{Email: strings.TrimSpace(result), SMS: fallbackSMS, Raw: result}

	idx := smsHeadingIndex(result)
	if idx < 0 {
		return b
	}

	b.Email = strings.TrimSpace(result[:idx])
	for _, line := range strings.Split(result[idx:], "\n")[1:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.SMS = TruncateSMS(line)
		break
	}
	return b
}

func smsHeadingIndex(result string) int {
	for _, marker := range []string{"## SMS", "SMS SUMMARY"} {
		if idx := strings.Index(result, marker); idx >= 0 {
			return idx
		}
	}
	return -1
}

// TruncateSMS clips a message to one SMS segment, on rune boundaries so
// multi-byte text is never split mid-character.
func TruncateSMS(msg string) string {
	r := []rune(msg)
	if len(r) <= SMSLimit {
		return msg
	}
	return string(r[:SMSLimit-3]) + "..."
}
