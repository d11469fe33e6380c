package handler

// HealthHandler exposes a "system" endpoint that external systems can use
// to verify the service is alive and its dependencies are usable.
//
// There is no database behind this service, so the checks cover what a
// dispatch actually needs: a configured mail transport and a reachable
// template directory.
import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hoseacodes/mailgate/internal/middleware"
	"github.com/hoseacodes/mailgate/internal/server"
)

// HealthHandler embeds the base Handler to reuse shared server dependencies.
type HealthHandler struct {
	Handler
}

// NewHealthHandler constructs a HealthHandler with access to shared app
// dependencies.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth returns system health status and dependency checks.
//
// Response includes:
// - overall status (healthy/unhealthy)
// - timestamp (UTC)
// - environment (from config)
// - checks map (mail transport, templates)
//
// It returns 200 OK if all checks pass and 503 Service Unavailable if any
// check fails.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      make(map[string]interface{}),
	}

	checks := response["checks"].(map[string]interface{})
	isHealthy := true

	// ---------------- Mail transport check -----------------------------------
	mailCheck := map[string]interface{}{
		"status":   "healthy",
		"provider": h.server.Config.Mail.Provider,
		"enabled":  h.server.Config.Mail.Enabled,
	}
	if h.server.Mailer == nil {
		mailCheck["status"] = "unhealthy"
		mailCheck["error"] = "no mail transport configured"
		isHealthy = false

		logger.Error().Msg("mail transport health check failed")
	} else if !h.server.Config.Mail.Enabled {
		// Disabled delivery is a deliberate state, not a failure; surface
		// it so operators see why nothing goes out.
		logger.Warn().Msg("mail delivery is disabled")
	}
	checks["mail"] = mailCheck

	// ---------------- Template directory check -------------------------------
	// A missing directory is not fatal (embedded defaults still apply) but
	// worth surfacing, since custom templates silently stop taking effect.
	templateDir := h.server.Config.Mail.TemplateDir
	templateCheck := map[string]interface{}{
		"status": "healthy",
		"dir":    templateDir,
	}
	if info, err := os.Stat(templateDir); err != nil || !info.IsDir() {
		templateCheck["status"] = "degraded"
		templateCheck["detail"] = "template directory not readable, embedded defaults in use"

		logger.Warn().
			Str("template_dir", templateDir).
			Msg("template directory not readable")
	}
	checks["templates"] = templateCheck

	// ---------------- Overall status + response ------------------------------
	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		if h.server.LoggerService != nil && h.server.LoggerService.GetApplication() != nil {
			h.server.LoggerService.GetApplication().RecordCustomEvent(
				"HealthCheckError",
				map[string]interface{}{
					"check_type":        "overall",
					"operation":         "health_check",
					"error_type":        "overall_unhealthy",
					"total_duration_ms": time.Since(start).Milliseconds(),
				},
			)
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}
