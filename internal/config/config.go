// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "change-me-brooklyn-creative-hub"

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	BaseURL     string
	LogLevel    string

	// Database
	DatabaseURL string
	RedisURL    string

	// Security
	JWTSecret          string
	BCryptCost         int
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	// Identity provider: "jwt" (tokens issued here) or "firebase"
	AuthProvider            string
	FirebaseCredentialsFile string

	// Rate Limiting
	LoginAttemptsMax    int
	LoginAttemptsWindow time.Duration

	// AI matcher
	Matcher MatcherConfig

	// Storage
	UseS3          bool
	S3Bucket       string
	AWSRegion      string
	LocalUploadDir string
	MaxUploadSize  int64

	// Email
	EmailProvider  string // "sendgrid" or "mock"
	EmailFrom      string
	SendGridAPIKey string

	// Push
	PushProvider string // "fcm" or "mock"

	// SMS
	SMSProvider      string // "twilio" or "mock"
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Payments
	PaymentFeePercent    float64
	PaymentFeeFlat       float64
	PendingPaymentTTL    time.Duration
	PaymentSweepSchedule string
	GigSweepSchedule     string
}

// MatcherConfig configures the chat-completion endpoint used for gig matching
// and the bounds placed on the prompt sent to it.
type MatcherConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	MaxTokens         int
	Timeout           time.Duration
	MaxGigs           int
	MaxPortfolioItems int
	MaxPromptChars    int
	MinScore          int
	RateLimit         int
	RateWindow        time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		BCryptCost:         getEnvInt("BCRYPT_COST", 12),
		AccessTokenExpiry:  getEnvDuration("ACCESS_TOKEN_EXPIRY", "1h"),
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", "720h"), // 30 days

		AuthProvider:            strings.ToLower(getEnv("AUTH_PROVIDER", "jwt")),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		LoginAttemptsMax:    getEnvInt("LOGIN_ATTEMPTS_MAX", 5),
		LoginAttemptsWindow: getEnvDuration("LOGIN_ATTEMPTS_WINDOW", "15m"),

		Matcher: MatcherConfig{
			BaseURL:           getEnv("MATCHER_API_URL", "https://apps.abacus.ai/v1"),
			APIKey:            getEnv("MATCHER_API_KEY", os.Getenv("ABACUSAI_API_KEY")),
			Model:             getEnv("MATCHER_MODEL", "gpt-4.1-mini"),
			MaxTokens:         getEnvInt("MATCHER_MAX_TOKENS", 2000),
			Timeout:           getEnvDuration("MATCHER_TIMEOUT", "45s"),
			MaxGigs:           getEnvInt("MATCHER_MAX_GIGS", 50),
			MaxPortfolioItems: getEnvInt("MATCHER_MAX_PORTFOLIO_ITEMS", 30),
			MaxPromptChars:    getEnvInt("MATCHER_MAX_PROMPT_CHARS", 60000),
			MinScore:          getEnvInt("MATCHER_MIN_SCORE", 60),
			RateLimit:         getEnvInt("MATCHER_RATE_LIMIT", 10),
			RateWindow:        getEnvDuration("MATCHER_RATE_WINDOW", "1h"),
		},

		UseS3:          getEnvBool("USE_S3", false),
		S3Bucket:       getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		LocalUploadDir: getEnv("LOCAL_UPLOAD_DIR", "./uploads"),
		MaxUploadSize:  int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) << 20,

		EmailProvider:  strings.ToLower(getEnv("EMAIL_PROVIDER", "mock")),
		EmailFrom:      getEnv("EMAIL_FROM", "hello@brooklyncreativehub.com"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		PushProvider: strings.ToLower(getEnv("PUSH_PROVIDER", "mock")),

		SMSProvider:      strings.ToLower(getEnv("SMS_PROVIDER", "mock")),
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		PaymentFeePercent:    getEnvFloat("PAYMENT_FEE_PERCENT", 0.029),
		PaymentFeeFlat:       getEnvFloat("PAYMENT_FEE_FLAT", 0.30),
		PendingPaymentTTL:    getEnvDuration("PENDING_PAYMENT_TTL", "24h"),
		PaymentSweepSchedule: getEnv("PAYMENT_SWEEP_SCHEDULE", "@every 1h"),
		GigSweepSchedule:     getEnv("GIG_SWEEP_SCHEDULE", "@every 30m"),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)
	}

	return cfg
}

// Validate checks the configuration once at startup so that a misconfigured
// process refuses to boot instead of failing on first use.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTSecret == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret must be changed for production")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	switch c.AuthProvider {
	case "jwt":
	case "firebase":
		if c.FirebaseCredentialsFile == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if err := c.Matcher.validate(); err != nil {
		return err
	}

	if c.UseS3 && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required when USE_S3=true")
	}

	switch c.EmailProvider {
	case "mock":
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid")
		}
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}

	switch c.SMSProvider {
	case "mock":
	case "twilio":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			return fmt.Errorf("incomplete Twilio configuration")
		}
	default:
		return fmt.Errorf("unknown SMS_PROVIDER %q", c.SMSProvider)
	}

	switch c.PushProvider {
	case "mock":
	case "fcm":
		if c.FirebaseCredentialsFile == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when PUSH_PROVIDER=fcm")
		}
	default:
		return fmt.Errorf("unknown PUSH_PROVIDER %q", c.PushProvider)
	}

	if c.PaymentFeePercent < 0 || c.PaymentFeePercent >= 1 || c.PaymentFeeFlat < 0 {
		return fmt.Errorf("payment fee configuration is invalid")
	}

	return nil
}

func (m MatcherConfig) validate() error {
	if m.APIKey == "" {
		return fmt.Errorf("MATCHER_API_KEY (or ABACUSAI_API_KEY) is required")
	}
	if m.BaseURL == "" || m.Model == "" {
		return fmt.Errorf("MATCHER_API_URL and MATCHER_MODEL are required")
	}
	if m.Timeout < 30*time.Second || m.Timeout > 60*time.Second {
		return fmt.Errorf("MATCHER_TIMEOUT must be between 30s and 60s, got %s", m.Timeout)
	}
	if m.MaxTokens <= 0 || m.MaxGigs <= 0 || m.MaxPortfolioItems <= 0 || m.MaxPromptChars <= 0 {
		return fmt.Errorf("matcher limits must be positive")
	}
	if m.MinScore < 0 || m.MinScore > 100 {
		return fmt.Errorf("MATCHER_MIN_SCORE must be between 0 and 100")
	}
	if m.RateLimit < 0 {
		return fmt.Errorf("MATCHER_RATE_LIMIT must not be negative")
	}
	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
