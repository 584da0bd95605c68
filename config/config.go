package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs from the environment. It is
// built once at boot and passed down explicitly instead of being read ad hoc
// inside handlers.
type Config struct {
	Port        string
	DatabaseURL string
	UploadDir   string
	FrontendURL string

	SessionSecret string
	JWTSecret     string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Email domains allowed to sign in via Google. Comma separated in the
	// environment, e.g. "sunocreators.com,unitedcreators.com.br".
	AllowedEmailDomains []string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		DatabaseURL:        getEnv("DATABASE_URL", "aprobi.db"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3001"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:3000/auth/google/callback"),
	}

	for _, d := range strings.Split(os.Getenv("ALLOWED_EMAIL_DOMAINS"), ",") {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			cfg.AllowedEmailDomains = append(cfg.AllowedEmailDomains, d)
		}
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if len(cfg.AllowedEmailDomains) == 0 {
		return nil, fmt.Errorf("ALLOWED_EMAIL_DOMAINS not set")
	}

	return cfg, nil
}

// DomainAllowed reports whether an email domain may sign in via Google.
func (c *Config) DomainAllowed(domain string) bool {
	domain = strings.ToLower(domain)
	for _, d := range c.AllowedEmailDomains {
		if d == domain {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
