// Package config loads Bitreon backend configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds the full backend configuration.
type Config struct {
	// HTTP server.
	ListenAddr     string        `env:"LISTEN_ADDR,default=:8080"`
	AllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=40"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`

	// Stacks node and contract.
	NodeURL          string        `env:"STACKS_API_URL,default=https://stacks-node-api.testnet.stacks.co"`
	NodeTimeout      time.Duration `env:"STACKS_API_TIMEOUT,default=30s"`
	ContractAddress  string        `env:"CONTRACT_ADDRESS,default=ST2S5RQ13X74V6D2GX9QRX7K89QMB2XTFJWFATZ6Y"`
	ContractName     string        `env:"CONTRACT_NAME,default=bitreon-core"`
	SBTCAddress      string        `env:"SBTC_CONTRACT_ADDRESS,default=SP3DX3H4FEYZJZ586MFBS25ZW3HZDMEW92260R2PR"`
	SBTCContractName string        `env:"SBTC_CONTRACT_NAME,default=Wrapped-Bitcoin"`

	// Session tokens.
	SessionSecret string        `env:"SESSION_SECRET,default=dev-only-secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL,default=24h"`

	// Subscription status cache.
	CacheTTL time.Duration `env:"SUBSCRIPTION_CACHE_TTL,default=15s"`
	RedisURL string        `env:"REDIS_URL,default="`

	// BTC price feed.
	PriceFeedURL      string        `env:"BTC_PRICE_FEED_URL,default=https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd"`
	PriceRefreshEvery time.Duration `env:"BTC_PRICE_REFRESH_INTERVAL,default=60s"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads .env if present, then decodes configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.ContractAddress) == "" {
		return fmt.Errorf("CONTRACT_ADDRESS is required")
	}
	if strings.TrimSpace(c.NodeURL) == "" {
		return fmt.Errorf("STACKS_API_URL is required")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// Origins returns the parsed CORS allow-list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
