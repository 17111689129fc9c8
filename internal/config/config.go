package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Salon
	Timezone          string
	StrictTransitions bool
	DetectOverlaps    bool

	// Cache
	CacheTTL time.Duration

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration
	BcryptCost   int
	DemoPassword string // password given to the seeded staff users

	// Observability
	OTLPEndpoint string

	// HTTP client / resilience
	HTTPTimeout    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	// Twilio WhatsApp
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	// Reminders
	ReminderCron     string
	RemindersEnabled bool

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Timezone:          getEnv("SALON_TIMEZONE", "America/Sao_Paulo"),
		StrictTransitions: getEnvBool("STRICT_TRANSITIONS", false),
		DetectOverlaps:    getEnvBool("DETECT_OVERLAPS", false),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		JWTSecret:    getEnv("JWT_SECRET", "beautypro-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 8*time.Hour),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),
		DemoPassword: getEnv("DEMO_PASSWORD", "beautypro"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 200*time.Millisecond),

		TwilioAccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),

		ReminderCron:     getEnv("REMINDER_CRON", "0 9 * * *"),
		RemindersEnabled: getEnvBool("REMINDERS_ENABLED", false),

		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// TwilioEnabled reports whether all Twilio credentials are present.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
