package email

import (
	"context"
	"crypto/tls"
	"io"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hoseacodes/mailgate/internal/config"
)

// SMTPSender delivers messages through a plain SMTP relay. It is the
// fallback transport for deployments without a Resend account.
type SMTPSender struct {
	host    string
	port    int
	user    string
	pass    string
	tlsMode string // "auto" | "starttls" | "ssl" | "none"

	logger *zerolog.Logger
}

// NewSMTPSender creates an SMTPSender from the relay settings in config.
func NewSMTPSender(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		host:    cfg.Host,
		port:    cfg.Port,
		user:    cfg.Username,
		pass:    cfg.Password,
		tlsMode: cfg.TLSMode,
		logger:  logger,
	}
}

// Send delivers a single message over SMTP. The connection is dialed per
// call; the relay is not kept warm.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	m := mail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)

	// Prefer multipart/alternative when both bodies are present.
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
	}
	if msg.HTML != "" {
		if msg.Text == "" {
			m.SetBody("text/html", msg.HTML)
		} else {
			m.AddAlternative("text/html", msg.HTML)
		}
	}

	for _, a := range msg.Attachments {
		content := a.Content
		settings := []mail.FileSetting{
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		m.Attach(a.Filename, settings...)
	}

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.TLSConfig = &tls.Config{ServerName: s.host}

	switch s.tlsMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto"/"starttls": go-mail negotiates STARTTLS when offered.
	}

	if err := d.DialAndSend(m); err != nil {
		return nil, errors.Wrap(err, "failed to send email via smtp")
	}

	s.logger.Debug().
		Str("provider", "smtp").
		Str("host", s.host).
		Strs("to", msg.To).
		Msg("email accepted by relay")

	// SMTP has no provider-side message ID; mint one so callers always
	// get a stable reference for logs.
	return &Result{ProviderID: uuid.New().String()}, nil
}
