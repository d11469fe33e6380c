package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/handler"
)

// registerApprovalRoutes registers the approve/deny decision endpoints.
//
// The GET routes back the links embedded in approval emails, so they must
// stay reachable from a plain mail client without custom headers.
func registerApprovalRoutes(r *echo.Echo, h *handler.Handlers) {
	auth := r.Group("/auth")

	auth.GET("/approve", handler.Handle(
		h.Approval.Handler,
		h.Approval.Approve,
		http.StatusOK,
		func() *handler.DecisionRequest { return &handler.DecisionRequest{} },
	))

	auth.GET("/deny", handler.Handle(
		h.Approval.Handler,
		h.Approval.Deny,
		http.StatusOK,
		func() *handler.DecisionRequest { return &handler.DecisionRequest{} },
	))

	auth.POST("/manual-approve", handler.Handle(
		h.Approval.Handler,
		h.Approval.ManualApprove,
		http.StatusOK,
		func() *handler.ManualDecisionRequest { return &handler.ManualDecisionRequest{} },
	))

	auth.POST("/manual-deny", handler.Handle(
		h.Approval.Handler,
		h.Approval.ManualDeny,
		http.StatusOK,
		func() *handler.ManualDecisionRequest { return &handler.ManualDecisionRequest{} },
	))
}
