// Package email provides the outbound message delivery transports.
//
// The dispatch pipeline composes a fully-rendered Message and hands it to a
// Sender; everything behind that interface (Resend HTTP API, SMTP relay) is
// a black box that either accepts the message or reports a transport error.
// Senders never retry: a failure is surfaced once, synchronously.
package email

import (
	"context"
)

// Attachment is a file carried inline with a message, such as a calendar
// invite.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is a fully-rendered outbound email. All templating and variable
// substitution happens before a Message is built; transports treat the
// bodies as opaque.
type Message struct {
	From     string
	FromName string
	To       []string
	Cc       []string
	Bcc      []string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string

	Attachments []Attachment
}

// Result reports a successful delivery handoff.
type Result struct {
	// ProviderID is the provider-assigned message ID, when the transport
	// exposes one.
	ProviderID string
}

// Sender delivers a single message. Implementations must be safe for
// concurrent use; the pipeline shares one Sender across all requests.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

// BatchSender is implemented by transports with a native batch endpoint.
// The batch payload is passed through unchanged; callers perform no
// per-message expansion.
type BatchSender interface {
	SendBatch(ctx context.Context, msgs []*Message) ([]Result, error)
}
