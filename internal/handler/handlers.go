package handler

import (
	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
//
// Similar to Middlewares and Services: a single struct keeps router setup
// clean, passing one object around instead of many.
type Handlers struct {
	Health   *HealthHandler   // Health serves service health endpoints.
	OpenAPI  *OpenAPIHandler  // OpenAPI serves API documentation.
	Email    *EmailHandler    // Email serves the notification dispatch endpoints.
	Approval *ApprovalHandler // Approval serves the approve/deny decision endpoints.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Email:    NewEmailHandler(s, services.Notification),
		Approval: NewApprovalHandler(s, services.Notification),
	}
}
