// Package mailbox fetches trigger emails over IMAP. Commands arrive as
// unread messages in a dedicated Gmail label; only envelopes are
// fetched since the command lives in the subject line.
package mailbox

import (
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// TriggerMail is one unread message from the trigger folder.
type TriggerMail struct {
	SeqNum    uint32
	MessageID string
	Subject   string
	Sender    string
	Date      time.Time
}

// IMAP is a connected trigger-mailbox session. One session per
// invocation; Close always logs out.
type IMAP struct {
	c     *client.Client
	label string
}

// Dial connects and logs in. The addr must include the port
// (imap.gmail.com:993).
func Dial(addr, user, password, label string) (*IMAP, error) {
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if err := c.Login(user, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	if label == "" {
		label = "INBOX"
	}
	return &IMAP{c: c, label: label}, nil
}

// Close logs out and drops the connection.
func (m *IMAP) Close() error {
	return m.c.Logout()
}

// UnreadTriggers returns the unread messages in the trigger folder.
// Messages stay unread until MarkSeen, so a failed run re-sees them on
// the next cron tick.
func (m *IMAP) UnreadTriggers() ([]TriggerMail, error) {
	// Gmail exposes labels as folders; fall back to INBOX when the
	// label doesn't exist yet.
	if _, err := m.c.Select(m.label, false); err != nil {
		if _, err := m.c.Select("INBOX", false); err != nil {
			return nil, fmt.Errorf("failed to select mailbox: %w", err)
		}
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	seqNums, err := m.c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("unseen search failed: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	messages := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- m.c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	var out []TriggerMail
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		out = append(out, TriggerMail{
			SeqNum:    msg.SeqNum,
			MessageID: msg.Envelope.MessageId,
			Subject:   msg.Envelope.Subject,
			Sender:    senderAddress(msg.Envelope),
			Date:      msg.Envelope.Date,
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("envelope fetch failed: %w", err)
	}
	return out, nil
}

// MarkSeen flags one message as read after its command was applied.
func (m *IMAP) MarkSeen(seqNum uint32) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := m.c.Store(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark message %d seen: %w", seqNum, err)
	}
	return nil
}

func senderAddress(env *imap.Envelope) string {
	if len(env.From) == 0 {
		return ""
	}
	return env.From[0].Address()
}
