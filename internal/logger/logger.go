// Package logger configures the application's logging, monitoring, and
// observability.
//
// It uses zerolog for structured logging and optionally integrates with
// New Relic, forwarding logs and linking log lines to distributed traces.
// When no New Relic license key is configured, everything degrades to a
// plain zerolog setup with zero behavioral difference for callers.
package logger

import (
	"io"
	"os"

	"github.com/hoseacodes/mailgate/internal/config"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerService owns the New Relic application instance.
//
// It exists even when New Relic is disabled; GetApplication simply returns
// nil then, and every caller treats a nil application as "tracing off".
type LoggerService struct {
	app *newrelic.Application
}

// NewLoggerService initializes the New Relic agent from observability config.
//
// With an empty license key it returns a service wrapping a nil application
// rather than an error, so startup never depends on APM being configured.
func NewLoggerService(cfg *config.ObservabilityConfig) (*LoggerService, error) {
	if cfg.NewRelic.LicenseKey == "" {
		return &LoggerService{}, nil
	}

	opts := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	}
	if cfg.NewRelic.DebugLogging {
		opts = append(opts, newrelic.ConfigDebugLogger(os.Stderr))
	}

	app, err := newrelic.NewApplication(opts...)
	if err != nil {
		return nil, err
	}

	return &LoggerService{app: app}, nil
}

// GetApplication returns the New Relic application, or nil when APM is
// disabled. Safe to call on a nil receiver.
func (s *LoggerService) GetApplication() *newrelic.Application {
	if s == nil {
		return nil
	}
	return s.app
}

// Shutdown flushes pending agent data. No-op when APM is disabled.
func (s *LoggerService) Shutdown() {
	if s == nil || s.app == nil {
		return
	}
	s.app.Shutdown(0)
}

// New builds the application's root zerolog logger from config.
//
// Output selection:
//   - "console" format writes human-friendly lines to stderr (local dev).
//   - "json" writes machine-parseable lines to stdout.
//   - With New Relic log forwarding on, stdout is wrapped in the
//     zerologWriter integration so log lines reach APM with trace linking.
func New(cfg *config.Config, service *LoggerService) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Observability.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Observability.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	} else if app := service.GetApplication(); app != nil && cfg.Observability.NewRelic.AppLogForwardingEnabled {
		out = zerologWriter.New(os.Stdout, app)
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.Observability.ServiceName).
		Str("env", cfg.Observability.Environment).
		Logger()

	return &logger
}

// WithTraceContext returns a child logger carrying the trace and span IDs of
// the given transaction, so log lines can be correlated with APM traces.
func WithTraceContext(l zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return l
	}
	md := txn.GetTraceMetadata()
	builder := l.With()
	if md.TraceID != "" {
		builder = builder.Str("trace.id", md.TraceID)
	}
	if md.SpanID != "" {
		builder = builder.Str("span.id", md.SpanID)
	}
	return builder.Logger()
}
