package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds everything the app reads from the environment.
type Config struct {
	Env             string `env:"ENV" envDefault:"development"`
	Port            string `env:"PORT" envDefault:"4000"`
	PublicAPIURL    string `env:"PUBLIC_API_URL"`
	InternalAPIURL  string `env:"INTERNAL_API_URL"`
	SocketURL       string `env:"SOCKET_URL"`
	RedisURL        string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SessionSecret   string `env:"SESSION_SECRET"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
}

func Load() (*Config, error) {
	// Only load .env in development
	if os.Getenv("ENV") != "production" {
		godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.PublicAPIURL == "" {
		return nil, fmt.Errorf("PUBLIC_API_URL environment variable is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if cfg.SocketURL == "" {
		cfg.SocketURL = cfg.PublicAPIURL
	}

	return cfg, nil
}

// APIBase returns the backend base URL. Server-rendered fetches prefer the
// internal URL when one is configured to skip the public edge.
func (c *Config) APIBase(serverSide bool) string {
	if serverSide && c.InternalAPIURL != "" {
		return c.InternalAPIURL
	}
	return c.PublicAPIURL
}

func NewLogger(env string) *zap.Logger {
	if env == "production" {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
