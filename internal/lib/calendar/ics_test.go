package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteICS(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	inv := Invite{
		UID:            "consultation-1234@example.com",
		Start:          start,
		End:            start.Add(30 * time.Minute),
		Summary:        "Engineering Consultation - Acme, Inc",
		Description:    "Type: Architecture Review\nJoin: https://meet.example.com/x",
		Location:       "https://meet.example.com/x",
		OrganizerName:  "Scheduler",
		OrganizerEmail: "noreply@example.com",
		AttendeeName:   "Ann Lee",
		AttendeeEmail:  "ann@acme.test",
	}

	ics := string(inv.ICS())

	require.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	require.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))

	assert.Contains(t, ics, "METHOD:REQUEST\r\n")
	assert.Contains(t, ics, "UID:consultation-1234@example.com\r\n")
	assert.Contains(t, ics, "DTSTART:20260314T150000Z\r\n")
	assert.Contains(t, ics, "DTEND:20260314T153000Z\r\n")
	assert.Contains(t, ics, "ORGANIZER;CN=Scheduler:mailto:noreply@example.com\r\n")
	assert.Contains(t, ics, "ATTENDEE;CN=Ann Lee;RSVP=TRUE:mailto:ann@acme.test\r\n")
	assert.Contains(t, ics, "STATUS:CONFIRMED\r\n")

	// Structural characters in text values must be escaped.
	assert.Contains(t, ics, "SUMMARY:Engineering Consultation - Acme\\, Inc\r\n")
	assert.Contains(t, ics, "DESCRIPTION:Type: Architecture Review\\nJoin: https://meet.example.com/x\r\n")
}

func TestInviteICSOmitsEmptyParticipants(t *testing.T) {
	inv := Invite{
		UID:     "x@example.com",
		Start:   time.Now(),
		End:     time.Now().Add(30 * time.Minute),
		Summary: "Call",
	}

	ics := string(inv.ICS())

	assert.NotContains(t, ics, "ORGANIZER")
	assert.NotContains(t, ics, "ATTENDEE")
	assert.NotContains(t, ics, "LOCATION")
}

func TestNewUID(t *testing.T) {
	uid := NewUID("consultation", "noreply@example.com")

	assert.True(t, strings.HasPrefix(uid, "consultation-"))
	assert.True(t, strings.HasSuffix(uid, "@example.com"))
}
