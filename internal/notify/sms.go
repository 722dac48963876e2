package notify

import (
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// smsLimit is the single-segment SMS length; everything sent through
// this package is clipped to it.
const smsLimit = 160

// SMS sends texts through Twilio.
type SMS struct {
	client    *twilio.RestClient
	from      string
	defaultTo string
}

// NewSMS builds a Twilio sender.
func NewSMS(accountSID, authToken, from, defaultTo string) *SMS {
	return &SMS{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:      from,
		defaultTo: defaultTo,
	}
}

// Send delivers one SMS, truncated to a single segment.
func (s *SMS) Send(message, to string) error {
	if to == "" {
		to = s.defaultTo
	}
	if to == "" {
		return fmt.Errorf("no SMS recipient configured")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(clipSMS(message))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}
	return nil
}

// SendConflictAlert texts a short calendar-conflict warning.
func (s *SMS) SendConflictAlert(event, conflict, to string) error {
	msg := fmt.Sprintf("CONFLICT: '%s' conflicts with '%s'. Check email.", clip(event, 30), clip(conflict, 30))
	return s.Send(msg, to)
}

// Clipping counts runes, not bytes, so multi-byte text is never split
// mid-character.
func clipSMS(msg string) string {
	r := []rune(msg)
	if len(r) <= smsLimit {
		return msg
	}
	return string(r[:smsLimit-3]) + "..."
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
