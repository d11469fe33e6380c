package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hoseacodes/mailgate/internal/errs"
	"github.com/hoseacodes/mailgate/internal/lib/calendar"
	"github.com/hoseacodes/mailgate/internal/lib/email"
	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/template"
	"github.com/hoseacodes/mailgate/internal/token"
	"github.com/hoseacodes/mailgate/internal/validation"
)

// NotificationService renders notification emails and routes them to the
// right recipient for each event kind.
type NotificationService struct {
	server   *server.Server
	issuer   *token.Issuer
	resolver *template.Resolver
}

func NewNotificationService(s *server.Server) *NotificationService {
	return &NotificationService{
		server:   s,
		issuer:   token.NewIssuer(s.Config.Token.Secret, s.Config.Token.TTL),
		resolver: template.NewResolver(s.Config.Mail.TemplateDir, s.Logger),
	}
}

// VerifyApprovalToken validates a decision-link token and returns its
// claims. Every verification failure maps to the same 400 response.
func (n *NotificationService) VerifyApprovalToken(raw string) (*token.Claims, error) {
	claims, err := n.issuer.Verify(raw)
	if err != nil {
		return nil, errs.NewTokenError()
	}
	return claims, nil
}

// Dispatch validates the request for its kind and sends the matching
// notification.
//
// Validation problems and unknown kinds return a *errs.HTTPError; transport
// failures do NOT error but come back as a DispatchResult with
// Success=false, so one failed email in a caller's sequence doesn't abort
// the rest.
func (n *NotificationService) Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResult, error) {
	switch req.Kind {
	case KindApproval:
		if err := requireUser(req.User, false); err != nil {
			return nil, err
		}
		return n.SendApprovalRequest(ctx, req.User), nil

	case KindApproved:
		if err := requireUser(req.User, false); err != nil {
			return nil, err
		}
		return n.SendAccountApproved(ctx, req.User), nil

	case KindDenied:
		if err := requireUser(req.User, false); err != nil {
			return nil, err
		}
		return n.SendAccountDenied(ctx, req.User), nil

	case KindPending:
		if err := requireUser(req.User, false); err != nil {
			return nil, err
		}
		return n.SendRegistrationPending(ctx, req.User), nil

	case KindPasswordReset:
		if err := requireUser(req.User, true); err != nil {
			return nil, err
		}
		return n.SendPasswordReset(ctx, req.User), nil

	case KindConsultationConfirmation:
		if err := requireConsultation(req.Consultation); err != nil {
			return nil, err
		}
		return n.SendConsultationConfirmation(ctx, req.Consultation), nil

	case KindConsultationNotification:
		if err := requireConsultation(req.Consultation); err != nil {
			return nil, err
		}
		return n.SendConsultationNotification(ctx, req.Consultation), nil

	case KindGeneric:
		if err := requireGeneric(req.Generic); err != nil {
			return nil, err
		}
		return n.SendGeneric(ctx, req.Generic), nil

	default:
		return nil, errs.NewBadRequestError(
			fmt.Sprintf("Invalid notification kind %q, valid kinds are: %s", req.Kind, strings.Join(Kinds(), ", ")),
			true, nil, nil, nil,
		)
	}
}

// SendApprovalRequest emails the administrator an approve/deny decision
// link for a pending registration. The embedded token is minted here; the
// caller may override the full URLs but never supplies the token itself.
func (n *NotificationService) SendApprovalRequest(ctx context.Context, u *UserEvent) *DispatchResult {
	cfg := n.server.Config
	admin := cfg.App.AdminEmail

	tok, err := n.issuer.Issue(u.Email, u.Name)
	if err != nil {
		n.server.Logger.Error().Err(err).Str("email", u.Email).Msg("failed to issue approval token")
		return failedResult(admin, err.Error())
	}

	approveURL := u.ApprovalURL
	if approveURL == "" {
		approveURL = decisionURL(cfg.App.BaseURL, "/auth/approve", tok)
	}
	denyURL := u.DenyURL
	if denyURL == "" {
		denyURL = decisionURL(cfg.App.BaseURL, "/auth/deny", tok)
	}

	html := n.resolver.Resolve("approval-email.html", map[string]string{
		"userName":       u.Name,
		"userEmail":      u.Email,
		"approvalUrl":    approveURL,
		"denyUrl":        denyURL,
		"approvalToken":  tok,
		"appName":        cfg.App.Name,
		"appDisplayName": cfg.App.DisplayName,
	})

	return n.deliver(ctx, &email.Message{
		To:      []string{admin},
		Subject: "New User Registration Approval Required - " + cfg.App.Name,
		HTML:    html,
	}, "Approval request sent to administrator")
}

// SendAccountApproved tells the user their account is active.
func (n *NotificationService) SendAccountApproved(ctx context.Context, u *UserEvent) *DispatchResult {
	cfg := n.server.Config

	loginURL := u.LoginURL
	if loginURL == "" {
		loginURL = cfg.App.BaseURL + "/login"
	}

	html := n.resolver.Resolve("account-approved.html", map[string]string{
		"userName":       u.Name,
		"appName":        cfg.App.Name,
		"appDisplayName": cfg.App.DisplayName,
		"loginUrl":       loginURL,
	})

	return n.deliver(ctx, &email.Message{
		To:      []string{u.Email},
		Subject: fmt.Sprintf("Your %s Account Has Been Approved", cfg.App.Name),
		HTML:    html,
	}, "Approval notification sent to user")
}

// SendAccountDenied tells the user their registration was not accepted.
func (n *NotificationService) SendAccountDenied(ctx context.Context, u *UserEvent) *DispatchResult {
	cfg := n.server.Config

	html := n.resolver.Resolve("account-denied.html", map[string]string{
		"userName":   u.Name,
		"appName":    cfg.App.Name,
		"adminEmail": cfg.App.AdminEmail,
	})

	return n.deliver(ctx, &email.Message{
		To:      []string{u.Email},
		Subject: fmt.Sprintf("%s Account Registration Status", cfg.App.Name),
		HTML:    html,
	}, "Denial notification sent to user")
}

// SendRegistrationPending confirms receipt of a registration that still
// awaits review.
func (n *NotificationService) SendRegistrationPending(ctx context.Context, u *UserEvent) *DispatchResult {
	cfg := n.server.Config

	html := n.resolver.Resolve("registration-pending.html", map[string]string{
		"userName":       u.Name,
		"appName":        cfg.App.Name,
		"appDisplayName": cfg.App.DisplayName,
		"adminEmail":     cfg.App.AdminEmail,
	})

	return n.deliver(ctx, &email.Message{
		To:      []string{u.Email},
		Subject: fmt.Sprintf("%s Registration Received - Pending Approval", cfg.App.Name),
		HTML:    html,
	}, "Pending-approval notification sent to user")
}

// SendPasswordReset carries a reset link to the user. ExpiryTime is a
// human-readable duration shown in the email body.
func (n *NotificationService) SendPasswordReset(ctx context.Context, u *UserEvent) *DispatchResult {
	cfg := n.server.Config

	expiry := u.ExpiryTime
	if expiry == "" {
		expiry = "24 hours"
	}

	html := n.resolver.Resolve("password-reset.html", map[string]string{
		"userName":   u.Name,
		"resetUrl":   u.ResetURL,
		"expiryTime": expiry,
		"adminEmail": cfg.App.AdminEmail,
		"appName":    cfg.App.Name,
	})

	return n.deliver(ctx, &email.Message{
		To:      []string{u.Email},
		Subject: "Password Reset Request - " + cfg.App.Name,
		HTML:    html,
	}, "Password reset email sent to user")
}

// SendConsultationConfirmation confirms a booking to the client, with a
// calendar invite attached when the slot parses cleanly.
func (n *NotificationService) SendConsultationConfirmation(ctx context.Context, c *ConsultationEvent) *DispatchResult {
	cfg := n.server.Config

	html := n.resolver.Resolve("consultation-confirmation.html", consultationVars(c))

	msg := &email.Message{
		To:      []string{c.Email},
		Subject: "Engineering Consultation Confirmed - " + cfg.App.DisplayName,
		HTML:    html,
	}

	if inv, ok := n.consultationInvite(c); ok {
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Filename:    "consultation.ics",
			Content:     inv.ICS(),
			ContentType: calendar.ContentType,
		})
	}

	return n.deliver(ctx, msg, "Consultation confirmation sent to client")
}

// SendConsultationNotification alerts the operations inbox about a new
// booking.
func (n *NotificationService) SendConsultationNotification(ctx context.Context, c *ConsultationEvent) *DispatchResult {
	cfg := n.server.Config

	html := n.resolver.Resolve("consultation-notification.html", consultationVars(c))

	return n.deliver(ctx, &email.Message{
		To:      []string{cfg.App.OpsEmail},
		Subject: "New Engineering Consultation Scheduled - " + c.Company,
		HTML:    html,
	}, "Consultation notification sent to operations")
}

// SendGeneric sends a caller-composed message without any templating.
func (n *NotificationService) SendGeneric(ctx context.Context, g *GenericMessage) *DispatchResult {
	return n.deliver(ctx, &email.Message{
		To:      g.To,
		Cc:      g.Cc,
		Bcc:     g.Bcc,
		Subject: g.Subject,
		Text:    g.Text,
		HTML:    g.HTML,
	}, "Email sent")
}

// Deliver forwards caller-composed messages straight to the transport. When
// batch is true and the transport has a native batch endpoint, the whole
// slice goes out in one call; otherwise messages are sent one by one and
// the first failure aborts.
func (n *NotificationService) Deliver(ctx context.Context, msgs []*email.Message, batch bool) ([]email.Result, error) {
	cfg := n.server.Config

	if !cfg.Mail.Enabled {
		code := errs.CodeMailDisabled
		return nil, errs.NewBadRequestError("Email service is disabled", false, &code, nil, nil)
	}

	for _, msg := range msgs {
		if msg.From == "" {
			msg.From = cfg.Mail.FromAddress
		}
		if msg.FromName == "" {
			msg.FromName = cfg.Mail.FromName
		}
	}

	if batch {
		if bs, ok := n.server.Mailer.(email.BatchSender); ok {
			results, err := bs.SendBatch(ctx, msgs)
			if err != nil {
				return nil, errs.NewDeliveryError(err.Error())
			}
			return results, nil
		}
		// Transport has no batch endpoint; degrade to sequential sends.
	}

	results := make([]email.Result, 0, len(msgs))
	for _, msg := range msgs {
		res, err := n.server.Mailer.Send(ctx, msg)
		if err != nil {
			return nil, errs.NewDeliveryError(err.Error())
		}
		results = append(results, *res)
	}
	return results, nil
}

// deliver stamps the configured sender identity on msg and hands it to the
// transport, translating the outcome into a DispatchResult.
func (n *NotificationService) deliver(ctx context.Context, msg *email.Message, okMessage string) *DispatchResult {
	cfg := n.server.Config

	recipient := ""
	if len(msg.To) > 0 {
		recipient = msg.To[0]
	}

	if !cfg.Mail.Enabled {
		n.server.Logger.Warn().
			Str("recipient", recipient).
			Str("subject", msg.Subject).
			Msg("email service is disabled, message dropped")
		return failedResult(recipient, "email service is disabled")
	}

	if msg.From == "" {
		msg.From = cfg.Mail.FromAddress
	}
	if msg.FromName == "" {
		msg.FromName = cfg.Mail.FromName
	}

	res, err := n.server.Mailer.Send(ctx, msg)
	if err != nil {
		n.server.Logger.Error().
			Err(err).
			Str("recipient", recipient).
			Str("subject", msg.Subject).
			Msg("email delivery failed")
		return failedResult(recipient, err.Error())
	}

	n.server.Logger.Info().
		Str("recipient", recipient).
		Str("subject", msg.Subject).
		Str("message_id", res.ProviderID).
		Msg("email sent")

	return &DispatchResult{
		Success:   true,
		Recipient: recipient,
		Message:   okMessage,
	}
}

// consultationInvite builds the calendar attachment for a booking. An
// unparseable date/slot pair skips the attachment rather than failing the
// whole confirmation.
func (n *NotificationService) consultationInvite(c *ConsultationEvent) (calendar.Invite, bool) {
	start, err := c.StartTime()
	if err != nil {
		n.server.Logger.Warn().
			Err(err).
			Str("date", c.Date).
			Str("time_slot", c.TimeSlot).
			Msg("cannot build calendar invite, sending confirmation without attachment")
		return calendar.Invite{}, false
	}

	cfg := n.server.Config
	return calendar.Invite{
		UID:            calendar.NewUID("consultation", cfg.Mail.FromAddress),
		Start:          start,
		End:            start.Add(30 * time.Minute),
		Summary:        "Engineering Consultation - " + c.Company,
		Description:    fmt.Sprintf("Type: %s\nClient: %s\nJoin: %s", c.ConsultationType, c.FullName(), c.MeetingLink),
		Location:       c.MeetingLink,
		OrganizerName:  cfg.Mail.FromName,
		OrganizerEmail: cfg.Mail.FromAddress,
		AttendeeName:   c.FullName(),
		AttendeeEmail:  c.Email,
	}, true
}

func consultationVars(c *ConsultationEvent) map[string]string {
	return map[string]string{
		"firstName":        c.FirstName,
		"lastName":         c.LastName,
		"email":            c.Email,
		"phone":            c.Phone,
		"company":          c.Company,
		"consultationType": c.ConsultationType,
		"formattedDate":    c.FormattedDate(),
		"formattedTime":    c.FormattedTime(),
		"meetingLink":      c.MeetingLink,
		"notes":            c.Notes,
	}
}

// decisionURL appends the approval token to a decision endpoint on the
// configured base URL.
func decisionURL(baseURL, path, tok string) string {
	return strings.TrimRight(baseURL, "/") + path + "?token=" + url.QueryEscape(tok)
}

func failedResult(recipient, detail string) *DispatchResult {
	return &DispatchResult{
		Success:     false,
		Recipient:   recipient,
		Message:     "Email not sent",
		ErrorDetail: detail,
	}
}

// requireUser checks the fields every user-directed kind needs. Password
// reset additionally needs the reset link.
func requireUser(u *UserEvent, needsResetURL bool) error {
	var issues validation.CustomValidationErrors

	if u == nil {
		u = &UserEvent{}
	}
	if u.Email == "" {
		issues = append(issues, validation.CustomValidationError{Field: "email", Message: "is required"})
	}
	if u.Name == "" {
		issues = append(issues, validation.CustomValidationError{Field: "name", Message: "is required"})
	}
	if needsResetURL && u.ResetURL == "" {
		issues = append(issues, validation.CustomValidationError{Field: "resetUrl", Message: "is required"})
	}

	return asValidationError(issues)
}

// requireConsultation checks the booking fields both consultation kinds
// need. Phone and notes stay optional.
func requireConsultation(c *ConsultationEvent) error {
	var issues validation.CustomValidationErrors

	if c == nil {
		c = &ConsultationEvent{}
	}
	required := []struct {
		field string
		value string
	}{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"company", c.Company},
		{"consultationType", c.ConsultationType},
		{"date", c.Date},
		{"timeSlot", c.TimeSlot},
		{"meetingLink", c.MeetingLink},
	}
	for _, r := range required {
		if r.value == "" {
			issues = append(issues, validation.CustomValidationError{Field: r.field, Message: "is required"})
		}
	}

	return asValidationError(issues)
}

func requireGeneric(g *GenericMessage) error {
	var issues validation.CustomValidationErrors

	if g == nil {
		g = &GenericMessage{}
	}
	if len(g.To) == 0 {
		issues = append(issues, validation.CustomValidationError{Field: "to", Message: "is required"})
	}
	if g.Subject == "" {
		issues = append(issues, validation.CustomValidationError{Field: "subject", Message: "is required"})
	}
	if g.Text == "" && g.HTML == "" {
		issues = append(issues, validation.CustomValidationError{Field: "text", Message: "either text or html body is required"})
	}

	return asValidationError(issues)
}

func asValidationError(issues validation.CustomValidationErrors) error {
	if len(issues) == 0 {
		return nil
	}
	msg, fieldErrors := validation.ExtractValidationError(issues)
	return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
}
