// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/handler"
	"github.com/hoseacodes/mailgate/internal/middleware"
)

// New builds the Echo instance with the full middleware stack and all
// routes registered.
//
// Middleware order matters:
//  1. Recover, so a panic anywhere below still produces a response.
//  2. RequestID, so every later stage can correlate.
//  3. New Relic transaction start, then tracing attributes.
//  4. ContextEnhancer, which needs both the request ID and the transaction
//     to build the request-scoped logger.
//  5. CORS, secure headers, request logging.
func New(h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = m.Global.GlobalErrorHandler

	e.Use(m.Global.Recover())
	e.Use(middleware.RequestID())
	e.Use(m.Tracing.NewRelicMiddleware())
	e.Use(m.Tracing.EnhanceTracing())
	e.Use(m.ContextEnhancer.EnhanceContext())
	e.Use(m.Global.CORS())
	e.Use(m.Global.Secure())
	e.Use(m.Global.RequestLogger())

	registerSystemRoutes(e, h)
	registerEmailRoutes(e, h)
	registerApprovalRoutes(e, h)

	return e
}
