// Package command interprets trigger-email subjects as assistant commands.
//
// A trigger subject carries a fixed, colon-terminated prefix (NUDGE:,
// MILESTONE:, NOTE:) followed by free-text payload, or the bare status
// query TODAY?. Matching is case-insensitive. Parsing never fails: a
// subject that matches nothing classifies as Unrecognized and the caller
// decides what to do with it.
package command

import "strings"

// Kind classifies a trigger subject.
type Kind string

const (
	KindNudge        Kind = "nudge"
	KindMilestone    Kind = "milestone"
	KindNote         Kind = "note"
	KindStatusQuery  Kind = "status_query"
	KindUnrecognized Kind = "unrecognized"
)

// Command is a parsed trigger subject. Payload is the trimmed free text
// after the prefix; empty for status queries and unrecognized subjects.
type Command struct {
	Kind    Kind
	Payload string
	Raw     string
}

// prefix table, checked in order. "ADD NUDGE:" and "ADD MILESTONE:" are
// accepted as spellings of the same commands.
var prefixes = []struct {
	token string
	kind  Kind
}{
	{"ADD NUDGE:", KindNudge},
	{"NUDGE:", KindNudge},
	{"ADD MILESTONE:", KindMilestone},
	{"MILESTONE:", KindMilestone},
	{"NOTE:", KindNote},
}

// Parse classifies a raw subject line into exactly one Kind and extracts
// its payload. It has no side effects and returns KindUnrecognized rather
// than an error for subjects it does not understand.
func Parse(subject string) Command {
	raw := subject
	s := strings.TrimSpace(subject)

	// Mailbox filters commonly tag trigger mail; the tag is not part of
	// the command.
	s = stripTag(s)

	upper := strings.ToUpper(s)

	if upper == "TODAY?" || upper == "TODAY" {
		return Command{Kind: KindStatusQuery, Raw: raw}
	}

	for _, p := range prefixes {
		if strings.HasPrefix(upper, p.token) {
			payload := strings.TrimSpace(s[len(p.token):])
			return Command{Kind: p.kind, Payload: payload, Raw: raw}
		}
	}

	return Command{Kind: KindUnrecognized, Raw: raw}
}

// stripTag removes a leading bracketed tag like "[TA]" from the subject.
func stripTag(s string) string {
	if !strings.HasPrefix(s, "[") {
		return s
	}
	end := strings.Index(s, "]")
	if end < 0 {
		return s
	}
	return strings.TrimSpace(s[end+1:])
}
