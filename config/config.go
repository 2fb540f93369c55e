package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	App       AppConfig
	Email     EmailConfig
	SMS       SMSConfig
	MagicLink MagicLinkConfig
	AWS       AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	// WorkerMetricsPort exposes /metrics from cmd/worker when set.
	WorkerMetricsPort string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AppConfig holds public URLs and presentation settings.
type AppConfig struct {
	// PublicBaseURL is where guests open RSVP links (<base>/rsvp/<token>).
	PublicBaseURL string
	// AppBaseURL is where the sign-in callback page lives.
	AppBaseURL      string
	DisplayTimezone string
}

// EmailConfig for Resend or SMTP delivery.
type EmailConfig struct {
	From         string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	// LogOnly allows running without a provider; emails are logged and recorded as skipped.
	LogOnly      bool
}

// Configured reports whether a real email provider is set.
func (c EmailConfig) Configured() bool {
	return c.ResendAPIKey != "" || c.SMTPHost != ""
}

// SMSConfig for the Vonage SMS API. Empty credentials mean SMS is not configured.
type SMSConfig struct {
	APIKey    string
	APISecret string
	From      string
	BaseURL   string
}

// MagicLinkConfig controls passwordless sign-in links.
type MagicLinkConfig struct {
	TTL time.Duration
}

// AWSConfig holds AWS credentials and the exports bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Configured reports whether both SMS credentials are present.
func (c SMSConfig) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Location resolves DisplayTimezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			WorkerMetricsPort:  getEnv("WORKER_METRICS_PORT", ""),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "partyweaver"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24*7),
		},
		App: AppConfig{
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
			AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:5173"),
			DisplayTimezone: getEnv("DISPLAY_TIMEZONE", "UTC"),
		},
		Email: EmailConfig{
			From:         getEnv("EMAIL_FROM", "Party Weaver <invitations@resend.dev>"),
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPass:     getEnv("SMTP_PASS", ""),
			LogOnly:      getEnvBool("EMAIL_LOG_ONLY", false),
		},
		SMS: SMSConfig{
			APIKey:    getEnv("VONAGE_API_KEY", ""),
			APISecret: getEnv("VONAGE_API_SECRET", ""),
			From:      getEnv("VONAGE_FROM", "PartyWeaver"),
			BaseURL:   getEnv("VONAGE_BASE_URL", "https://rest.nexmo.com"),
		},
		MagicLink: MagicLinkConfig{
			TTL: time.Duration(getEnvInt("MAGIC_LINK_TTL_MINUTES", 15)) * time.Minute,
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", "partyweaver-exports"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MagicLink.TTL <= 0 {
		return nil, fmt.Errorf("MAGIC_LINK_TTL_MINUTES must be > 0")
	}
	if _, err := time.LoadLocation(cfg.App.DisplayTimezone); err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE is invalid: %w", err)
	}
	cfg.App.PublicBaseURL = strings.TrimRight(cfg.App.PublicBaseURL, "/")
	cfg.App.AppBaseURL = strings.TrimRight(cfg.App.AppBaseURL, "/")
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
