package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string
	Location    *time.Location

	JWTSigningKey string
	JWTIssuer     string
	SessionTTL    time.Duration

	IdentityBackend    string // local|cognito
	CognitoClientID    string
	CognitoUserPoolID  string
	AWSRegion          string
	RedisAddr          string
	BotToken           string
	RateLimitPerMin    int
	AllowAdminSignup   bool
	AdminEmails        []string
	ReminderInterval   time.Duration
	ReminderWindow     time.Duration
	ReminderBatchLimit int
	CORSOrigins        []string
}

// Load читает конфиг из окружения; .env подхватываем, если он есть.
func Load() (*Config, error) {
	_ = godotenv.Load()

	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	cfg := &Config{
		DatabaseURL: dbURL,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		Release:     getenv("RELEASE", "dev"),
		Location:    loc,

		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:     getenv("JWT_ISSUER", "appointment-portal"),

		IdentityBackend:   strings.ToLower(getenv("IDENTITY_BACKEND", "local")),
		CognitoClientID:   os.Getenv("COGNITO_CLIENT_ID"),
		CognitoUserPoolID: os.Getenv("COGNITO_USER_POOL_ID"),
		AWSRegion:         getenv("AWS_REGION", "eu-central-1"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		BotToken:          os.Getenv("BOT_TOKEN"),
		AdminEmails:       parseList(os.Getenv("ADMIN_EMAILS")),
		CORSOrigins:       parseOrigins(os.Getenv("CORS_ORIGINS")),
	}

	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReminderInterval, err = durationEnv("REMINDER_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReminderWindow, err = durationEnv("REMINDER_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMin, err = intEnv("RATE_LIMIT_PER_MIN", 120); err != nil {
		return nil, err
	}
	if cfg.ReminderBatchLimit, err = intEnv("REMINDER_BATCH", 100); err != nil {
		return nil, err
	}
	if cfg.AllowAdminSignup, err = boolEnv("ALLOW_ADMIN_SIGNUP", true); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProd() bool { return strings.ToLower(c.Env) == "prod" }

func (c *Config) validate() error {
	if c.JWTSigningKey == "" {
		if c.IsProd() {
			return fmt.Errorf("JWT_SIGNING_KEY is required in prod")
		}
		c.JWTSigningKey = "dev-signing-secret-change"
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"SESSION_TTL", c.SessionTTL},
		{"REMINDER_INTERVAL", c.ReminderInterval},
		{"REMINDER_WINDOW", c.ReminderWindow},
	} {
		if d.v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.v)
		}
	}
	if c.ReminderBatchLimit <= 0 {
		return fmt.Errorf("REMINDER_BATCH must be positive, got %d", c.ReminderBatchLimit)
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative, got %d", c.RateLimitPerMin)
	}
	switch c.IdentityBackend {
	case "local":
	case "cognito":
		if c.CognitoClientID == "" || c.CognitoUserPoolID == "" {
			return fmt.Errorf("IDENTITY_BACKEND=cognito requires COGNITO_CLIENT_ID and COGNITO_USER_POOL_ID")
		}
	default:
		return fmt.Errorf("IDENTITY_BACKEND: unknown backend %q", c.IdentityBackend)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

// parseList — "a@x, b@y" → [a@x b@y], в нижнем регистре.
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}

// parseOrigins — список origin'ов для CORS: без завершающего "/", в нижнем регистре.
func parseOrigins(s string) []string {
	out := parseList(s)
	for i, o := range out {
		out[i] = strings.TrimRight(o, "/")
	}
	return out
}
