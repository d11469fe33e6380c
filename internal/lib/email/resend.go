package email

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendSender delivers messages through the Resend HTTP API.
type ResendSender struct {
	// client is the provider client used to send emails via API.
	client *resend.Client

	logger *zerolog.Logger
}

// NewResendSender creates a ResendSender backed by the given API key.
func NewResendSender(apiKey string, logger *zerolog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		logger: logger,
	}
}

// Send delivers a single message through the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	params := toResendRequest(msg)

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send email via resend")
	}

	s.logger.Debug().
		Str("provider", "resend").
		Str("message_id", sent.Id).
		Strs("to", msg.To).
		Msg("email accepted by provider")

	return &Result{ProviderID: sent.Id}, nil
}

// SendBatch hands a batch of messages to the Resend batch endpoint in a
// single call. Messages are forwarded exactly as given.
func (s *ResendSender) SendBatch(ctx context.Context, msgs []*Message) ([]Result, error) {
	params := make([]*resend.SendEmailRequest, 0, len(msgs))
	for _, msg := range msgs {
		params = append(params, toResendRequest(msg))
	}

	sent, err := s.client.Batch.SendWithContext(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send email batch via resend")
	}

	results := make([]Result, 0, len(sent.Data))
	for _, r := range sent.Data {
		results = append(results, Result{ProviderID: r.Id})
	}

	s.logger.Debug().
		Str("provider", "resend").
		Int("count", len(results)).
		Msg("email batch accepted by provider")

	return results, nil
}

// toResendRequest maps a Message onto the Resend request shape.
func toResendRequest(msg *Message) *resend.SendEmailRequest {
	from := msg.From
	if msg.FromName != "" {
		// "From" is the sender identity. Resend may require a verified
		// domain/address.
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	return params
}
