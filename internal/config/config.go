// Package config manages environment variables.
//
// It reads variables from the process environment (optionally seeded
// from a `.env` file), maps them into structured Go types, applies
// defaults for the optional blocks, and validates that required values
// are present so the app fails fast on bad configuration.
//
// Env naming convention:
//   - Prefix MAILGATE_ selects the variables that belong to us.
//   - A double underscore separates nesting levels, e.g.
//     MAILGATE_MAIL__FROM_ADDRESS -> mail.from_address -> Config.Mail.FromAddress
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env before
	// any variable is read. No explicit call needed.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// DevTokenSecret is the built-in development signing secret. It keeps local
// setups working with zero configuration, but it is public knowledge and must
// be overridden in production. Load logs a warning whenever it is active.
const DevTokenSecret = "mySecretKey"

// Config is the root configuration object for the application.
//
// Everything here is loaded once at startup and treated as read-only
// afterwards; no component mutates configuration at runtime.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Mail          MailConfig           `koanf:"mail" validate:"required"`
	Token         TokenConfig          `koanf:"token"`
	App           AppConfig            `koanf:"app"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are stored as whole seconds in the environment.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// MailConfig selects and configures the outbound delivery transport.
//
// Provider picks between the Resend HTTP API and a plain SMTP relay. The
// selection happens once at startup; there is no runtime failover between
// the two.
type MailConfig struct {
	Provider     string     `koanf:"provider" validate:"required,oneof=resend smtp"`
	Enabled      bool       `koanf:"enabled"`
	FromAddress  string     `koanf:"from_address" validate:"required,email"`
	FromName     string     `koanf:"from_name"`
	ResendAPIKey string     `koanf:"resend_api_key"`
	TemplateDir  string     `koanf:"template_dir"`
	SMTP         SMTPConfig `koanf:"smtp"`
}

// SMTPConfig contains connection details for the SMTP relay transport.
// Only consulted when Mail.Provider is "smtp".
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// TLSMode is one of "auto", "starttls", "ssl", "none".
	TLSMode string `koanf:"tls_mode"`
}

// TokenConfig stores the approval-token signing parameters.
//
// There is no server-side revocation: a signed token stays valid for its
// full TTL, even after it has been acted upon once.
type TokenConfig struct {
	Secret string        `koanf:"secret"`
	TTL    time.Duration `koanf:"ttl"`
}

// AppConfig carries the product-level values substituted into email
// templates and used for per-kind recipient routing.
type AppConfig struct {
	BaseURL     string `koanf:"base_url"`
	AdminEmail  string `koanf:"admin_email" validate:"required,email"`
	OpsEmail    string `koanf:"ops_email" validate:"required,email"`
	Name        string `koanf:"name"`
	DisplayName string `koanf:"display_name"`
}

// Load reads configuration from environment variables, unmarshals it into
// Config, applies defaults, and validates the result.
//
// It logs fatally on any failure: a service with broken configuration should
// not come up half-working.
func Load() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	// MAILGATE_MAIL__FROM_ADDRESS -> "mail.from_address". Double underscore
	// marks nesting so single underscores stay usable inside key names.
	err := k.Load(env.Provider("MAILGATE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MAILGATE_")), "__", ".")
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load initial env variables.")
	}

	mainConfig := &Config{
		// Mail delivery is on unless explicitly disabled; a zero-value bool
		// would otherwise silently turn every dispatch into a no-op.
		Mail: MailConfig{Enabled: true},
	}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not unmarshal main config.")
	}

	applyDefaults(mainConfig, &logger)

	validate := validator.New()
	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Config validation failed.")
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Force service name and environment so telemetry sees consistent naming
	// regardless of what the environment says.
	mainConfig.Observability.ServiceName = "mailgate"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid observability config")
	}

	return mainConfig, nil
}

// applyDefaults fills optional blocks before validation runs, so the
// `required` tags only fire for values with no sensible fallback.
func applyDefaults(cfg *Config, logger *zerolog.Logger) {
	if cfg.Token.Secret == "" {
		cfg.Token.Secret = DevTokenSecret
		logger.Warn().Msg("token secret not configured, using built-in development secret; set MAILGATE_TOKEN__SECRET in production")
	}
	if cfg.Token.TTL == 0 {
		cfg.Token.TTL = 24 * time.Hour
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:8080"
	}
	if cfg.App.Name == "" {
		cfg.App.Name = "Application"
	}
	if cfg.App.DisplayName == "" {
		cfg.App.DisplayName = "User Management System"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = cfg.App.DisplayName
	}
	if cfg.Mail.TemplateDir == "" {
		cfg.Mail.TemplateDir = "templates"
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if cfg.Mail.SMTP.TLSMode == "" {
		cfg.Mail.SMTP.TLSMode = "auto"
	}
}

// IsDevSecret reports whether the token signing secret is still the
// built-in development value.
func (c *Config) IsDevSecret() bool {
	return c.Token.Secret == DevTokenSecret
}
