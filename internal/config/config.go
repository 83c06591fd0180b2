package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverDynamo   = "dynamo"
)

const minSecretLen = 32

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string   `env:"APP_PORT" envDefault:"3000"`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	SentryDSN      string   `env:"SENTRY_DSN"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"atelier"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	AWSRegion      string       `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string       `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string       `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string       `env:"AWS_SECRET_ACCESS_KEY"`
	DynamoTables   DynamoTables `envPrefix:"DYNAMO_TABLE_"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	OAuthCodeTTL  time.Duration `env:"OAUTH_CODE_TTL" envDefault:"5m"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
	FrontendURLs  FrontendURLs  `envPrefix:"FRONTEND_"`
	Google        OAuthClient   `envPrefix:"GOOGLE_"`
	Facebook      OAuthClient   `envPrefix:"FACEBOOK_"`
	OAuthStateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`

	// Per-client limit on the credential endpoints.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom     string `env:"EMAIL_FROM" envDefault:"no-reply@atelier.local"`
	SMTPUsername string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users               string `env:"USERS" envDefault:"users"`
	VerificationTokens  string `env:"VERIFICATION_TOKENS" envDefault:"verification_tokens"`
	PasswordResetTokens string `env:"PASSWORD_RESET_TOKENS" envDefault:"password_reset_tokens"`
}

// FrontendURLs are the client pages that emailed links and OAuth redirects point at.
type FrontendURLs struct {
	VerifyURL        string `env:"VERIFY_URL" envDefault:"http://localhost:3000/verify"`
	ResetPasswordURL string `env:"RESET_PASSWORD_URL" envDefault:"http://localhost:3000/reset-password"`
	OAuthRedirectURL string `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:3000/oauth/callback"`
}

// OAuthClient holds the credentials of one identity provider.
type OAuthClient struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// Enabled reports whether the provider has credentials configured.
func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.Google.CallbackURL == "" {
		cfg.Google.CallbackURL = "http://localhost:" + cfg.AppPort + "/v1/auth/google/callback"
	}
	if cfg.Facebook.CallbackURL == "" {
		cfg.Facebook.CallbackURL = "http://localhost:" + cfg.AppPort + "/v1/auth/facebook/callback"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < minSecretLen {
		return errors.New("JWT_SECRET must be at least 32 bytes in production")
	}
	switch c.StoreDriver {
	case DriverPostgres, DriverDynamo:
	default:
		return errors.New("STORE_DRIVER must be one of postgres, dynamo")
	}
	if c.JWTExpiry <= 0 || c.OAuthCodeTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
