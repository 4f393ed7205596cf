package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, read once at startup.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string

	// JWTSecret signs bearer tokens. Rotating it invalidates existing sessions.
	JWTSecret string

	// OpenAIKey is optional. When empty the chat relay runs scripted-only.
	OpenAIKey   string
	OpenAIModel string
	ChatTimeout time.Duration

	AllowedOrigins []string
}

func New() (*Config, error) {
	cfg := &Config{
		Env:         getEnvOrDefault("ENV", "development"),
		Port:        getEnvOrDefault("PORT", "5000"),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=dndsim port=5432 sslmode=disable"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
	}

	// A missing signing secret must fail at startup, not at first request.
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	timeoutSeconds := getEnvOrDefault("CHAT_TIMEOUT_SECONDS", "15")
	seconds, err := strconv.Atoi(timeoutSeconds)
	if err != nil || seconds <= 0 {
		return nil, fmt.Errorf("invalid CHAT_TIMEOUT_SECONDS %q", timeoutSeconds)
	}
	cfg.ChatTimeout = time.Duration(seconds) * time.Second

	origins := getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return strings.HasPrefix(strings.ToLower(c.Env), "p")
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
