// Package config defines the global configuration structure for the
// AssetTrack service. Configuration is loaded once at process start and is
// immutable thereafter. It follows 12-Factor principles: values come from
// the OS environment, optionally seeded from a .env file for local
// development. Any missing required value or invalid format aborts startup
// (fail fast).
package config

import (
	"time"

	"assettrack/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"assettrack-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Email    EmailConfig
	Auth     AuthConfig
	Warranty WarrantyConfig
	Security SecurityConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds regional configuration for the SES client.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// LocalStack support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Enabled       bool   `envconfig:"EMAIL_ENABLED" default:"true"`
	FromAddress   string `envconfig:"EMAIL_FROM_ADDRESS" default:"alerts@assettrack.example.com"`
	FromName      string `envconfig:"EMAIL_FROM_NAME" default:"AssetTrack Alerts"`
	ConfigSetName string `envconfig:"SES_CONFIG_SET"`
}

// AuthConfig holds session management settings.
type AuthConfig struct {
	SessionKey SecretString  `envconfig:"SESSION_KEY" validate:"required,min=32"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12" validate:"min=10,max=16"`
}

// WarrantyConfig holds warranty check engine settings.
type WarrantyConfig struct {
	// CheckInterval is the period of the in-process daily check loop.
	CheckInterval time.Duration `envconfig:"WARRANTY_CHECK_INTERVAL" default:"24h"`
	// CheckOnStartup triggers one check run as soon as the service boots.
	CheckOnStartup bool `envconfig:"WARRANTY_CHECK_ON_STARTUP" default:"false"`
}

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}
