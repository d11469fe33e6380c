// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - outbound mail transport (Resend API or SMTP relay)
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoseacodes/mailgate/internal/config"
	"github.com/hoseacodes/mailgate/internal/lib/email"
	loggerPkg "github.com/hoseacodes/mailgate/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - the outbound mail transport
//   - an internal *http.Server used to listen and serve requests
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain nil nrApp.
	LoggerService *loggerPkg.LoggerService

	// Mailer is the outbound delivery transport, selected once at startup
	// by Config.Mail.Provider. There is no runtime failover.
	Mailer email.Sender

	// httpServer is the standard library HTTP server instance.
	// It is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in
// SetupHTTPServer + Start.
//
// The mail transport is constructed here so a misconfigured provider fails
// startup instead of failing the first dispatch.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail transport: %w", err)
	}

	if cfg.IsDevSecret() {
		logger.Warn().Msg("approval tokens are signed with the built-in development secret; anyone can forge them")
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Mailer:        mailer,
	}

	return server, nil
}

// newMailer builds the delivery transport selected by config.
func newMailer(cfg *config.Config, logger *zerolog.Logger) (email.Sender, error) {
	switch cfg.Mail.Provider {
	case "resend":
		if cfg.Mail.ResendAPIKey == "" {
			return nil, errors.New("mail provider is resend but no API key is configured")
		}
		return email.NewResendSender(cfg.Mail.ResendAPIKey, logger), nil

	case "smtp":
		if cfg.Mail.SMTP.Host == "" {
			return nil, errors.New("mail provider is smtp but no relay host is configured")
		}
		return email.NewSMTPSender(cfg.Mail.SMTP, logger), nil

	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
}

// SetupHTTPServer configures the internal net/http server.
//
// The actual router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr: ":" + s.Config.Server.Port,

		Handler: handler,

		// These timeouts protect against slow clients and resource
		// exhaustion. Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server.
//
// It requires SetupHTTPServer to be called first. It blocks until the
// server stops or errors.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("mail_provider", s.Config.Mail.Provider).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It stops accepting new connections and waits for inflight requests until
// the ctx deadline, then flushes the telemetry agent.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if s.LoggerService != nil {
		s.LoggerService.Shutdown()
	}

	return nil
}
