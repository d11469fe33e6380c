// Package calendar builds iCalendar (RFC 5545) invites attached to
// consultation confirmation emails.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the UTC form used for all DTSTART/DTEND/DTSTAMP values.
const timestampLayout = "20060102T150405Z"

// ContentType is the MIME type calendar clients expect for .ics attachments.
const ContentType = "text/calendar; charset=utf-8; method=REQUEST"

// Invite describes a single VEVENT. Times are rendered in UTC.
type Invite struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Location    string

	OrganizerName  string
	OrganizerEmail string
	AttendeeName   string
	AttendeeEmail  string
}

// NewUID builds an event UID from the current time and the organizer's
// mail domain, e.g. "consultation-1735689600000@example.com".
func NewUID(prefix, organizerEmail string) string {
	domain := organizerEmail
	if at := strings.LastIndex(organizerEmail, "@"); at >= 0 {
		domain = organizerEmail[at+1:]
	}
	return fmt.Sprintf("%s-%d@%s", prefix, time.Now().UnixMilli(), domain)
}

// ICS renders the invite as a complete VCALENDAR document with CRLF line
// endings and METHOD:REQUEST, so mail clients offer an add-to-calendar
// action.
func (inv Invite) ICS() []byte {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//mailgate//Consultation Scheduler//EN")
	line("METHOD:REQUEST")
	line("BEGIN:VEVENT")
	line("UID:" + inv.UID)
	line("DTSTAMP:" + time.Now().UTC().Format(timestampLayout))
	line("DTSTART:" + inv.Start.UTC().Format(timestampLayout))
	line("DTEND:" + inv.End.UTC().Format(timestampLayout))
	line("SUMMARY:" + escapeText(inv.Summary))
	line("DESCRIPTION:" + escapeText(inv.Description))
	if inv.Location != "" {
		line("LOCATION:" + escapeText(inv.Location))
	}
	if inv.OrganizerEmail != "" {
		line(fmt.Sprintf("ORGANIZER;CN=%s:mailto:%s", inv.OrganizerName, inv.OrganizerEmail))
	}
	if inv.AttendeeEmail != "" {
		line(fmt.Sprintf("ATTENDEE;CN=%s;RSVP=TRUE:mailto:%s", inv.AttendeeName, inv.AttendeeEmail))
	}
	line("STATUS:CONFIRMED")
	line("END:VEVENT")
	line("END:VCALENDAR")

	return []byte(b.String())
}

// escapeText escapes characters with structural meaning in iCalendar
// text values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}
