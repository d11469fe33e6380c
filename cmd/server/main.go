// Command server runs the mailgate HTTP service.
//
// Startup order:
//  1. Load and validate configuration from the environment.
//  2. Initialize the logger and the optional New Relic agent.
//  3. Build the Server container (mail transport selection happens here).
//  4. Wire services, handlers, middleware, and routes.
//  5. Serve until SIGINT/SIGTERM, then shut down gracefully.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/hoseacodes/mailgate/internal/config"
	"github.com/hoseacodes/mailgate/internal/handler"
	"github.com/hoseacodes/mailgate/internal/logger"
	"github.com/hoseacodes/mailgate/internal/middleware"
	"github.com/hoseacodes/mailgate/internal/router"
	"github.com/hoseacodes/mailgate/internal/server"
	"github.com/hoseacodes/mailgate/internal/service"
)

// shutdownTimeout bounds how long inflight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Load logs fatally on its own; this is a safety net.
		os.Exit(1)
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		// APM init failure should not take the service down; run without it.
		loggerService = &logger.LoggerService{}
	}

	log := logger.New(cfg, loggerService)

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	services, err := service.NewService(srv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv)

	e := router.New(handlers, middlewares)
	srv.SetupHTTPServer(e)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}
