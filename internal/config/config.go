package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultDatabaseURL        = "tooma.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultPublicBaseURL      = "http://localhost:8080"
	defaultFrontendURL        = "http://localhost:3001"
	defaultMaxUploadSize      = "104857600"
	defaultS3Region           = "us-east-1"
	defaultS3UploadPrefix     = "uploads/"
	defaultLinkTTL            = "2h"
	defaultFallbackLinkTTL    = "1h"
	defaultPaystackBaseURL    = "https://api.paystack.co"
	defaultPaystackCurrency   = "GHS"
	defaultPaystackTimeout    = "15s"
	defaultSMTPPort           = "587"
	defaultSMTPTimeout        = "15s"
	defaultMailFrom           = "onboarding@tooma.app"
	defaultExpiryNoticeWindow = "24h"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	PublicBaseURL string
	FrontendURL   string
	CORSOrigins   []string
	MaxUploadSize int64

	S3 S3Config

	// LinkTTL applies to links minted on upload creation and on explicit
	// presign requests; FallbackLinkTTL to links filled lazily on save.
	LinkTTL         time.Duration
	FallbackLinkTTL time.Duration

	Paystack PaystackConfig
	SMTP     SMTPConfig

	ExpiryNoticeWindow time.Duration
}

type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	UploadPrefix    string
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

// Enabled reports whether enough settings are present to deliver mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != 0
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(getEnv("FRONTEND_URL", defaultFrontendURL)), "/")
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.MaxUploadSize, err = parseInt64Env("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	if err != nil {
		return nil, err
	}

	cfg.S3 = S3Config{
		Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region:          strings.TrimSpace(getEnv("S3_REGION", defaultS3Region)),
		AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		UsePathStyle:    parseBoolEnv("S3_USE_PATH_STYLE", "false"),
		UploadPrefix:    getEnv("S3_UPLOAD_PREFIX", defaultS3UploadPrefix),
	}

	cfg.LinkTTL, err = parseDurationEnv("LINK_TTL", defaultLinkTTL)
	if err != nil {
		return nil, err
	}
	cfg.FallbackLinkTTL, err = parseDurationEnv("FALLBACK_LINK_TTL", defaultFallbackLinkTTL)
	if err != nil {
		return nil, err
	}

	cfg.Paystack = PaystackConfig{
		SecretKey: strings.TrimSpace(os.Getenv("PAYSTACK_SECRET_KEY")),
		BaseURL:   strings.TrimRight(strings.TrimSpace(getEnv("PAYSTACK_BASE_URL", defaultPaystackBaseURL)), "/"),
		Currency:  strings.ToUpper(strings.TrimSpace(getEnv("PAYSTACK_CURRENCY", defaultPaystackCurrency))),
	}
	cfg.Paystack.Timeout, err = parseDurationEnv("PAYSTACK_TIMEOUT", defaultPaystackTimeout)
	if err != nil {
		return nil, err
	}

	smtpPort, err := parseInt64Env("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}
	cfg.SMTP = SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:     int(smtpPort),
		User:     strings.TrimSpace(os.Getenv("SMTP_USER")),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     strings.TrimSpace(getEnv("MAIL_FROM", defaultMailFrom)),
	}
	cfg.SMTP.Timeout, err = parseDurationEnv("SMTP_TIMEOUT", defaultSMTPTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ExpiryNoticeWindow, err = parseDurationEnv("EXPIRY_NOTICE_WINDOW", defaultExpiryNoticeWindow)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// APIPrefix is the mount point of every versioned route.
const APIPrefix = "/api/v1"

// APIBaseURL is the externally reachable root of the versioned API.
func (c *Config) APIBaseURL() string {
	return c.PublicBaseURL + APIPrefix
}

// IsProdLike reports whether the config targets a production environment.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0")
	}
	if cfg.LinkTTL <= 0 {
		return fmt.Errorf("LINK_TTL must be > 0")
	}
	if cfg.FallbackLinkTTL <= 0 {
		return fmt.Errorf("FALLBACK_LINK_TTL must be > 0")
	}
	if cfg.Paystack.Timeout <= 0 {
		return fmt.Errorf("PAYSTACK_TIMEOUT must be > 0")
	}
	if cfg.SMTP.Timeout <= 0 {
		return fmt.Errorf("SMTP_TIMEOUT must be > 0")
	}
	if cfg.ExpiryNoticeWindow <= 0 {
		return fmt.Errorf("EXPIRY_NOTICE_WINDOW must be > 0")
	}
	if len(cfg.Paystack.Currency) != 3 {
		return fmt.Errorf("PAYSTACK_CURRENCY must be a 3-letter code")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.Paystack.SecretKey == "" {
			return fmt.Errorf("in prod/release PAYSTACK_SECRET_KEY must be set")
		}
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("in prod/release S3_BUCKET must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
