package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/handler"
)

// registerEmailRoutes registers the notification dispatch endpoints.
func registerEmailRoutes(r *echo.Echo, h *handler.Handlers) {
	api := r.Group("/api/email")

	// Templated notification selected by templateType.
	api.POST("/send", handler.Handle(
		h.Email.Handler,
		h.Email.Send,
		http.StatusOK,
		func() *handler.SendEmailRequest { return &handler.SendEmailRequest{} },
	))

	// Plain-text message to a single recipient.
	api.POST("/send-simple", handler.Handle(
		h.Email.Handler,
		h.Email.SendSimple,
		http.StatusOK,
		func() *handler.SimpleSendRequest { return &handler.SimpleSendRequest{} },
	))

	// Caller-composed messages forwarded straight to the transport.
	api.POST("/deliver", handler.Handle(
		h.Email.Handler,
		h.Email.Deliver,
		http.StatusOK,
		func() *handler.DeliverRequest { return &handler.DeliverRequest{} },
	))
}
