package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/service"
)

// ApprovalHandler exposes the approve/deny decision endpoints.
//
// The token-based GET endpoints back the links embedded in approval emails,
// so an administrator can act straight from their mail client. The manual
// POST endpoints cover decisions made out-of-band, where no token exists.
type ApprovalHandler struct {
	Handler
	notifications *service.NotificationService
}

// NewApprovalHandler constructs an ApprovalHandler.
func NewApprovalHandler(s *server.Server, notifications *service.NotificationService) *ApprovalHandler {
	return &ApprovalHandler{
		Handler:       NewHandler(s),
		notifications: notifications,
	}
}

// DecisionRequest carries the approval token from the email link.
type DecisionRequest struct {
	Token string `query:"token" validate:"required"`
}

func (r *DecisionRequest) Validate() error {
	return validate.Struct(r)
}

// ManualDecisionRequest identifies a user directly, for decisions made
// without a token.
type ManualDecisionRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func (r *ManualDecisionRequest) Validate() error {
	return validate.Struct(r)
}

// DecisionUser is the user a decision was applied to.
type DecisionUser struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// DecisionResponse reports a processed approve/deny action. EmailSent is
// false when the outcome notification could not be delivered; the decision
// itself still counts as processed.
type DecisionResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	EmailSent bool         `json:"emailSent"`
	User      DecisionUser `json:"user"`
}

// Approve handles GET /auth/approve: verifies the token and notifies the
// user their account was approved.
func (h *ApprovalHandler) Approve(c echo.Context, req *DecisionRequest) (*DecisionResponse, error) {
	claims, err := h.notifications.VerifyApprovalToken(req.Token)
	if err != nil {
		return nil, err
	}

	result := h.notifications.SendAccountApproved(c.Request().Context(), &service.UserEvent{
		Email: claims.Email,
		Name:  claims.Name,
	})

	return decisionResponse("approved", claims.Email, claims.Name, result), nil
}

// Deny handles GET /auth/deny: verifies the token and notifies the user
// their registration was denied.
func (h *ApprovalHandler) Deny(c echo.Context, req *DecisionRequest) (*DecisionResponse, error) {
	claims, err := h.notifications.VerifyApprovalToken(req.Token)
	if err != nil {
		return nil, err
	}

	result := h.notifications.SendAccountDenied(c.Request().Context(), &service.UserEvent{
		Email: claims.Email,
		Name:  claims.Name,
	})

	return decisionResponse("denied", claims.Email, claims.Name, result), nil
}

// ManualApprove handles POST /auth/manual-approve for decisions made
// outside the email flow.
func (h *ApprovalHandler) ManualApprove(c echo.Context, req *ManualDecisionRequest) (*DecisionResponse, error) {
	result := h.notifications.SendAccountApproved(c.Request().Context(), &service.UserEvent{
		Email: req.Email,
		Name:  req.Name,
	})

	return decisionResponse("approved", req.Email, req.Name, result), nil
}

// ManualDeny handles POST /auth/manual-deny.
func (h *ApprovalHandler) ManualDeny(c echo.Context, req *ManualDecisionRequest) (*DecisionResponse, error) {
	result := h.notifications.SendAccountDenied(c.Request().Context(), &service.UserEvent{
		Email: req.Email,
		Name:  req.Name,
	})

	return decisionResponse("denied", req.Email, req.Name, result), nil
}

func decisionResponse(decision, email, name string, result *service.DispatchResult) *DecisionResponse {
	message := "User " + decision
	if !result.Success {
		message += ", but the notification email could not be sent"
	}

	status := "APPROVED"
	if decision == "denied" {
		status = "DENIED"
	}

	return &DecisionResponse{
		Success:   true,
		Message:   message,
		EmailSent: result.Success,
		User: DecisionUser{
			Email:  email,
			Name:   name,
			Status: status,
		},
	}
}
