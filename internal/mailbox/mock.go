package mailbox

import "time"

// Mock is the trigger mailbox for --test runs: canned unread messages,
// recorded MarkSeen calls, no network.
type Mock struct {
	Unread []TriggerMail
	Seen   []uint32
	Closed bool
}

// NewMock seeds one trigger of each command shape.
func NewMock(now time.Time) *Mock {
	return &Mock{
		Unread: []TriggerMail{
			{
				SeqNum:    1,
				MessageID: "<mock1@example.com>",
				Subject:   "[TA] NUDGE: Print CO2 car rubrics tomorrow at 7:15am",
				Sender:    "teacher@school.edu",
				Date:      now,
			},
			{
				SeqNum:    2,
				MessageID: "<mock2@example.com>",
				Subject:   "NOTE: Team 4 lost their draft, check in Friday",
				Sender:    "teacher@school.edu",
				Date:      now,
			},
			{
				SeqNum:    3,
				MessageID: "<mock3@example.com>",
				Subject:   "today?",
				Sender:    "teacher@school.edu",
				Date:      now,
			},
		},
	}
}

func (m *Mock) UnreadTriggers() ([]TriggerMail, error) {
	return m.Unread, nil
}

func (m *Mock) MarkSeen(seqNum uint32) error {
	m.Seen = append(m.Seen, seqNum)
	return nil
}

func (m *Mock) Close() error {
	m.Closed = true
	return nil
}
