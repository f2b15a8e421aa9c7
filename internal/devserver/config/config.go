// Package config loads settings for the local development server from the
// environment, with an optional .env file for convenience.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string        `env:"RUNNERVAULT_ADDR" envDefault:":5000"`
	DatabaseDSN string        `env:"RUNNERVAULT_DB" envDefault:"devserver.db"`
	JWTSecret   string        `env:"RUNNERVAULT_JWT_SECRET" envDefault:"dev-only-secret"`
	TokenTTL    time.Duration `env:"RUNNERVAULT_TOKEN_TTL" envDefault:"24h"`
}

// Load reads the optional .env file and parses the environment. A missing
// .env file is not an error; the process environment alone is enough.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
