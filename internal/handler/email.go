package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/errs"
	"github.com/hoseacodes/mailgate/internal/lib/email"
	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/service"
)

// validate runs struct-tag validation for request payloads in this package.
var validate = validator.New()

// EmailHandler exposes the notification dispatch endpoints.
type EmailHandler struct {
	Handler
	notifications *service.NotificationService
}

// NewEmailHandler constructs an EmailHandler.
func NewEmailHandler(s *server.Server, notifications *service.NotificationService) *EmailHandler {
	return &EmailHandler{
		Handler:       NewHandler(s),
		notifications: notifications,
	}
}

// SendEmailRequest is the payload for POST /api/email/send.
//
// templateType selects the notification kind; which of the remaining fields
// matter depends on it. Kind-specific requirements are enforced by the
// dispatch service, not tags, because no tag can express "firstName is
// required only for consultation kinds".
type SendEmailRequest struct {
	TemplateType string `json:"templateType" validate:"required"`

	// Approval-workflow and password-reset fields.
	Email       string `json:"email"`
	Name        string `json:"name"`
	ApprovalURL string `json:"approvalUrl"`
	DenyURL     string `json:"denyUrl"`
	LoginURL    string `json:"loginUrl"`
	ResetURL    string `json:"resetUrl"`
	ExpiryTime  string `json:"expiryTime"`

	// Consultation fields.
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	Company          string `json:"company"`
	ConsultationType string `json:"consultationType"`
	Date             string `json:"date"`
	TimeSlot         string `json:"timeSlot"`
	MeetingLink      string `json:"meetingLink"`
	Notes            string `json:"notes"`

	// Generic-send fields.
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

func (r *SendEmailRequest) Validate() error {
	return validate.Struct(r)
}

// toDispatchRequest maps the flat wire payload onto the tagged union the
// service consumes.
func (r *SendEmailRequest) toDispatchRequest(kind service.Kind) *service.DispatchRequest {
	req := &service.DispatchRequest{Kind: kind}

	switch kind {
	case service.KindConsultationConfirmation, service.KindConsultationNotification:
		req.Consultation = &service.ConsultationEvent{
			FirstName:        r.FirstName,
			LastName:         r.LastName,
			Email:            r.Email,
			Phone:            r.Phone,
			Company:          r.Company,
			ConsultationType: r.ConsultationType,
			Date:             r.Date,
			TimeSlot:         r.TimeSlot,
			MeetingLink:      r.MeetingLink,
			Notes:            r.Notes,
		}

	case service.KindGeneric:
		req.Generic = &service.GenericMessage{
			To:      r.To,
			Subject: r.Subject,
			Text:    r.Text,
			HTML:    r.HTML,
		}

	default:
		req.User = &service.UserEvent{
			Email:       r.Email,
			Name:        r.Name,
			ApprovalURL: r.ApprovalURL,
			DenyURL:     r.DenyURL,
			LoginURL:    r.LoginURL,
			ResetURL:    r.ResetURL,
			ExpiryTime:  r.ExpiryTime,
		}
	}

	return req
}

// Send dispatches a templated notification selected by templateType.
func (h *EmailHandler) Send(c echo.Context, req *SendEmailRequest) (*service.DispatchResult, error) {
	kind, _ := service.ParseKind(req.TemplateType)
	if kind == "" {
		// Unknown kinds flow into Dispatch unmapped so the error message
		// listing valid kinds comes from one place.
		kind = service.Kind(req.TemplateType)
	}

	result, err := h.notifications.Dispatch(c.Request().Context(), req.toDispatchRequest(kind))
	if err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, h.failureError(result)
	}

	return result, nil
}

// SimpleSendRequest is the payload for POST /api/email/send-simple: a
// plain-text message to a single recipient, no templates involved.
type SimpleSendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

func (r *SimpleSendRequest) Validate() error {
	return validate.Struct(r)
}

// SendSimple sends a plain-text message to a single recipient.
func (h *EmailHandler) SendSimple(c echo.Context, req *SimpleSendRequest) (*service.DispatchResult, error) {
	result, err := h.notifications.Dispatch(c.Request().Context(), &service.DispatchRequest{
		Kind: service.KindGeneric,
		Generic: &service.GenericMessage{
			To:      []string{req.To},
			Subject: req.Subject,
			Text:    req.Text,
		},
	})
	if err != nil {
		return nil, err
	}

	if !result.Success {
		return nil, h.failureError(result)
	}

	return result, nil
}

// DeliverMessage is one caller-composed message in a deliver request.
type DeliverMessage struct {
	From     string   `json:"from"`
	FromName string   `json:"fromName"`
	To       []string `json:"to" validate:"required,min=1,dive,email"`
	Cc       []string `json:"cc" validate:"omitempty,dive,email"`
	Bcc      []string `json:"bcc" validate:"omitempty,dive,email"`
	Subject  string   `json:"subject" validate:"required"`
	Text     string   `json:"text"`
	HTML     string   `json:"html"`
}

// DeliverRequest is the payload for POST /api/email/deliver. It forwards
// fully-composed messages to the transport without touching templates.
// With batch=true the transport's native batch endpoint is used when
// available.
type DeliverRequest struct {
	Batch    bool             `json:"batch"`
	Messages []DeliverMessage `json:"messages" validate:"required,min=1,dive"`
}

func (r *DeliverRequest) Validate() error {
	return validate.Struct(r)
}

// DeliverResponse reports provider IDs for an accepted deliver request.
type DeliverResponse struct {
	Count   int            `json:"count"`
	Results []email.Result `json:"results"`
}

// Deliver forwards caller-composed messages straight to the transport.
func (h *EmailHandler) Deliver(c echo.Context, req *DeliverRequest) (*DeliverResponse, error) {
	msgs := make([]*email.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, &email.Message{
			From:     m.From,
			FromName: m.FromName,
			To:       m.To,
			Cc:       m.Cc,
			Bcc:      m.Bcc,
			Subject:  m.Subject,
			Text:     m.Text,
			HTML:     m.HTML,
		})
	}

	results, err := h.notifications.Deliver(c.Request().Context(), msgs, req.Batch)
	if err != nil {
		return nil, err
	}

	return &DeliverResponse{
		Count:   len(results),
		Results: results,
	}, nil
}

// failureError maps a failed dispatch onto the right HTTP error: a disabled
// mail service is a configuration state the client can act on, anything
// else is a transport fault.
func (h *EmailHandler) failureError(result *service.DispatchResult) error {
	if !h.server.Config.Mail.Enabled {
		code := errs.CodeMailDisabled
		return errs.NewBadRequestError("Email service is disabled", false, &code, nil, nil)
	}
	return errs.NewDeliveryError(result.ErrorDetail)
}
