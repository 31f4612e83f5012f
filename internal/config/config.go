// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env   string `env:"ENV" envDefault:"development"`
	Port  string `env:"PORT" envDefault:"8080"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"rift.db"`
	JWTSecret    string `env:"JWT_SECRET" envDefault:"rift-secret-key"`

	CoinGeckoBaseURL string        `env:"COINGECKO_BASE_URL" envDefault:"https://api.coingecko.com/api/v3"`
	MarketCacheTTL   time.Duration `env:"MARKET_CACHE_TTL" envDefault:"60s"`

	SeedDemoDeals bool `env:"SEED_DEMO_DEALS" envDefault:"true"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
