package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	Strategy        string
	RemoteURL       string
	RemoteTimeout   time.Duration
	AnthropicAPIKey string
	ClaudeModel     string

	TLSDomains []string
	ACMEEmail  string
	Production bool

	BatchConcurrency int
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getenv("PORT", "5000"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		Strategy:         strings.ToLower(getenv("CHECK_STRATEGY", "local")),
		RemoteURL:        os.Getenv("REMOTE_CHECK_URL"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:      getenv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		ACMEEmail:        os.Getenv("ACME_EMAIL"),
		Production:       os.Getenv("FRAMEGATE_ENV") == "production",
		BatchConcurrency: 8,
	}

	switch cfg.Strategy {
	case "local", "claude":
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, fmt.Errorf("REMOTE_CHECK_URL is required when CHECK_STRATEGY=remote")
		}
	default:
		return nil, fmt.Errorf("unknown CHECK_STRATEGY %q (want local, remote or claude)", cfg.Strategy)
	}

	timeout, err := time.ParseDuration(getenv("REMOTE_CHECK_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parsing REMOTE_CHECK_TIMEOUT: %w", err)
	}
	cfg.RemoteTimeout = timeout

	if v := os.Getenv("BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("BATCH_CONCURRENCY must be a positive integer, got %q", v)
		}
		cfg.BatchConcurrency = n
	}

	for _, d := range strings.Split(os.Getenv("TLS_DOMAINS"), ",") {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			cfg.TLSDomains = append(cfg.TLSDomains, d)
		}
	}

	return cfg, nil
}

// TLSEnabled reports whether HTTPS with managed certificates is configured.
func (c *Config) TLSEnabled() bool {
	return len(c.TLSDomains) > 0
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
