package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Supported identity strategies.
const (
	AuthModeHeader = "header"
	AuthModePaseto = "paseto"
	AuthModeJWT    = "jwt"
)

// RedisConfig holds the Redis connection pool settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// Validate implements validation.Validatable.
func (r RedisConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required.Error("REDIS_URL is required")),
		validation.Field(&r.PoolSize, validation.Min(1)),
	)
}

// SMTPConfig holds outgoing mail settings. An empty Host disables delivery.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// RateLimitConfig holds the per-client token bucket settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// AppConfig holds the application configuration
type AppConfig struct {
	Env             string
	Port            string
	DBURL           string
	Redis           RedisConfig
	AuthMode        string
	SymmetricKey    string
	JWTSecret       string
	SMTP            SMTPConfig
	AllowedOrigins  []string
	RateLimit       RateLimitConfig
	ShutdownTimeout time.Duration

	// MetricsToken, when set, is required as a bearer token on /metrics.
	MetricsToken string

	// RecurrenceChecksAvailability makes weekly recurrence fail with a
	// conflict when the next occurrence overlaps an existing booking.
	RecurrenceChecksAvailability bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &AppConfig{
		Env:   getEnv("ENV", "development"),
		Port:  getEnv("PORT", "8930"),
		DBURL: os.Getenv("DB_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 30*time.Second),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 10*time.Second),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
		},
		AuthMode:     strings.ToLower(getEnv("AUTH_MODE", AuthModePaseto)),
		SymmetricKey: os.Getenv("SYMMETRIC_KEY"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnvAsInt("SMTP_PORT", 587),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 15),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		ShutdownTimeout:              getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MetricsToken:                 os.Getenv("METRICS_TOKEN"),
		RecurrenceChecksAvailability: getEnvAsBool("RECURRENCE_CHECK_AVAILABILITY", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings required to boot are present and coherent.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBURL, validation.Required.Error("DB_URL is required")),
		validation.Field(&c.Redis),
		validation.Field(&c.AuthMode, validation.In(AuthModeHeader, AuthModePaseto, AuthModeJWT)),
		// Header mode still signs paseto tokens at login.
		validation.Field(&c.SymmetricKey,
			validation.When(c.AuthMode != AuthModeJWT, validation.Required.Error("SYMMETRIC_KEY is required")),
			validation.Length(32, 32).Error("SYMMETRIC_KEY must be 32 bytes long")),
		validation.Field(&c.JWTSecret, validation.When(c.AuthMode == AuthModeJWT,
			validation.Required.Error("JWT_SECRET is required when AUTH_MODE=jwt"))),
	)
}

// IsProduction reports whether the service runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(name, defaultValue string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Warning: Invalid number value for %s, using default: %g", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(name); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: Invalid boolean value for %s, using default: %t", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		log.Printf("Warning: Invalid duration value for %s, using default: %s", name, defaultValue.String())
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
