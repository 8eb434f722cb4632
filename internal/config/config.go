package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPListenAddr string `env:"HTTP_LISTEN_ADDR" envDefault:":3000"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"swiftwheelz-web"`
	// MetricsListenAddr moves /metrics to a separate listener when set.
	MetricsListenAddr string `env:"METRICS_LISTEN_ADDR"`

	BackendAPIURL        string        `env:"BACKEND_API_URL"`
	BackendAPIKey        string        `env:"BACKEND_API_KEY"`
	BackendTimeout       time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	BackendTLSCert       string        `env:"BACKEND_TLS_CERT"`
	BackendTLSKey        string        `env:"BACKEND_TLS_KEY"`
	BackendTLSCACert     string        `env:"BACKEND_TLS_CA_CERT"`
	BackendTLSServerName string        `env:"BACKEND_TLS_SERVER_NAME"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

	QuoteTTL          time.Duration `env:"QUOTE_TTL" envDefault:"30m"`
	MaxRentalDays     int           `env:"MAX_RENTAL_DAYS" envDefault:"90"`
	DepositPercent    float64       `env:"DEPOSIT_PERCENT" envDefault:"100"`
	PendingPaymentTTL time.Duration `env:"PENDING_PAYMENT_TTL" envDefault:"72h"`

	// DatabaseURL is optional. When empty, pending payments are cached in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	ContentFile string `env:"CONTENT_FILE"`
}

// Load reads an optional .env file from the working directory and then parses
// the process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting in a single error.
func (c *Config) Validate() error {
	var missing []string
	if c.BackendAPIURL == "" {
		missing = append(missing, "BACKEND_API_URL")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	if (c.BackendTLSCert == "") != (c.BackendTLSKey == "") {
		return fmt.Errorf("BACKEND_TLS_CERT and BACKEND_TLS_KEY must both be set")
	}
	if c.MaxRentalDays < 1 {
		return fmt.Errorf("MAX_RENTAL_DAYS must be positive")
	}
	if c.DepositPercent <= 0 || c.DepositPercent > 100 {
		return fmt.Errorf("DEPOSIT_PERCENT must be in (0, 100]")
	}
	return nil
}

// S3Enabled reports whether truck image storage is configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
