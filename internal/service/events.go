package service

import (
	"strings"
	"time"
)

// Kind identifies which notification template and routing rule applies to a
// dispatch request.
type Kind string

const (
	// KindApproval asks an administrator to approve or deny a new account.
	KindApproval Kind = "approval"

	// KindApproved tells a user their account was approved.
	KindApproved Kind = "approved"

	// KindDenied tells a user their account was denied.
	KindDenied Kind = "denied"

	// KindPending confirms a registration was received and awaits review.
	KindPending Kind = "pending"

	// KindConsultationConfirmation confirms a booked consultation to the
	// client, with a calendar invite attached.
	KindConsultationConfirmation Kind = "consultation-confirmation"

	// KindConsultationNotification alerts the operations inbox about a new
	// booking.
	KindConsultationNotification Kind = "consultation-notification"

	// KindPasswordReset carries a password reset link to a user.
	KindPasswordReset Kind = "password-reset"

	// KindGeneric is a free-form send with caller-supplied recipients,
	// subject, and body.
	KindGeneric Kind = "generic"
)

// Kinds lists every valid kind, used in validation error messages.
func Kinds() []string {
	return []string{
		string(KindApproval),
		string(KindApproved),
		string(KindDenied),
		string(KindPending),
		string(KindConsultationConfirmation),
		string(KindConsultationNotification),
		string(KindPasswordReset),
		string(KindGeneric),
	}
}

// ParseKind maps a raw string onto a Kind, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if string(k) == known {
			return k, true
		}
	}
	return "", false
}

// UserEvent carries the account holder behind an approval-workflow or
// password-reset notification. Only Email and Name are always required;
// the URL fields override generated defaults when set.
type UserEvent struct {
	Email string
	Name  string

	// ApprovalURL and DenyURL replace the generated decision links when
	// the caller already built them.
	ApprovalURL string
	DenyURL     string

	// LoginURL overrides the default sign-in link in approval emails.
	LoginURL string

	// ResetURL and ExpiryTime apply to password-reset only.
	ResetURL   string
	ExpiryTime string
}

// ConsultationEvent carries a consultation booking. Date is "2006-01-02"
// and TimeSlot is a 24-hour "15:04" value.
type ConsultationEvent struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Company          string
	ConsultationType string
	Date             string
	TimeSlot         string
	MeetingLink      string
	Notes            string
}

// FullName joins the client's first and last name.
func (e *ConsultationEvent) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// StartTime combines Date and TimeSlot into the meeting start instant.
func (e *ConsultationEvent) StartTime() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", e.Date+" "+e.TimeSlot)
}

// FormattedDate renders Date as "Monday, January 2, 2006". Unparseable
// input falls back to the raw value so the email still reads sensibly.
func (e *ConsultationEvent) FormattedDate() string {
	d, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return e.Date
	}
	return d.Format("Monday, January 2, 2006")
}

// FormattedTime renders TimeSlot as a 12-hour clock value, e.g. "2:30 PM
// CST". Unparseable input falls back to the raw value.
func (e *ConsultationEvent) FormattedTime() string {
	t, err := time.Parse("15:04", e.TimeSlot)
	if err != nil {
		return e.TimeSlot
	}
	return t.Format("3:04 PM") + " CST"
}

// GenericMessage is a free-form send that bypasses templating entirely.
type GenericMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Text    string
	HTML    string
}

// DispatchRequest is a tagged union: Kind selects which of the payload
// fields must be populated.
type DispatchRequest struct {
	Kind         Kind
	User         *UserEvent
	Consultation *ConsultationEvent
	Generic      *GenericMessage
}

// DispatchResult reports the outcome of a single dispatch. A transport
// failure is a result with Success=false, never a Go error; callers decide
// how to surface it.
type DispatchResult struct {
	Success     bool   `json:"success"`
	Recipient   string `json:"recipient"`
	Message     string `json:"message"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}
