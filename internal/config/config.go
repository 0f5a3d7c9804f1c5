package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs, resolved once at startup.
// Handlers and services receive the pieces they use; nothing reads the
// environment after Load returns.
type Config struct {
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	MediaDir  string

	// ContactWhatsapp is the store's contact number shown on every page of the
	// storefront. Injected here instead of living as a constant in a module.
	ContactWhatsapp string

	Culqi CulqiConfig
}

// CulqiConfig configures the Culqi order gateway and its webhook.
type CulqiConfig struct {
	BaseURL   string
	SecretKey string
	Currency  string

	// Optional static credentials for the inbound webhook. When both are set
	// the endpoint requires Basic-Auth; when empty it accepts anything.
	WebhookUser string
	WebhookPass string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("APP_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		MediaDir:        getenv("MEDIA_DIR", "media"),
		ContactWhatsapp: getenv("CONTACT_WHATSAPP", "51944739301"),
		Culqi: CulqiConfig{
			BaseURL:     getenv("CULQI_BASE_URL", "https://api.culqi.com/v2"),
			SecretKey:   os.Getenv("CULQI_SECRET_KEY"),
			Currency:    getenv("CULQI_CURRENCY", "PEN"),
			WebhookUser: os.Getenv("CULQI_WEBHOOK_USER"),
			WebhookPass: os.Getenv("CULQI_WEBHOOK_PASS"),
		},
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
