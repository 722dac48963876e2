package notify

import "teachmate/internal/calendar"

// SentEmail records one email a mock sender "delivered".
type SentEmail struct {
	Subject string
	Plain   string
	HTML    string
	To      string
}

// MockEmail records sends instead of dialing SMTP. Used by --test runs
// and unit tests to prove real delivery never happens in test mode.
type MockEmail struct {
	Sent []SentEmail
}

func (m *MockEmail) Send(subject, plain, html, to string) error {
	m.Sent = append(m.Sent, SentEmail{Subject: subject, Plain: plain, HTML: html, To: to})
	return nil
}

func (m *MockEmail) SendBriefing(b BriefingEmail, to string) error {
	html, err := RenderBriefingHTML(b)
	if err != nil {
		return err
	}
	return m.Send("Daily Briefing - "+b.Date.Format("Monday, January 2, 2006"), b.Body, html, to)
}

func (m *MockEmail) SendConflictNotice(proposed string, conflicts []calendar.Event, to string) error {
	return m.Send("[TA] Calendar Conflict Detected", proposed, "", to)
}

// SentSMS records one SMS a mock sender "delivered".
type SentSMS struct {
	Body string
	To   string
}

// MockSMS records sends instead of calling Twilio.
type MockSMS struct {
	Sent []SentSMS
}

func (m *MockSMS) Send(message, to string) error {
	m.Sent = append(m.Sent, SentSMS{Body: clipSMS(message), To: to})
	return nil
}

func (m *MockSMS) SendConflictAlert(event, conflict, to string) error {
	return m.Send("CONFLICT: '"+clip(event, 30)+"' conflicts with '"+clip(conflict, 30)+"'. Check email.", to)
}
