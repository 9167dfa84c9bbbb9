package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // Zone database for LOG_TIMEZONE on hosts without one.

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Token        string  `env:"TOKEN,required,notEmpty"`
	AppPassword  string  `env:"APP_PASSWORD,required,notEmpty"`
	AllowedUsers []int64 `env:"ALLOWED_USERS"`
	DBPath       string  `env:"DB_PATH"                         envDefault:"db.sqlite"`

	OpenAIAPIKey     string        `env:"OPENAI_API_KEY,required,notEmpty"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"                     envDefault:"https://api.openai.com/v1/"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL"                  envDefault:"https://api.anthropic.com"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT"                    envDefault:"90s"`

	PromptsPath    string        `env:"PROMPTS_PATH"`
	LogTimezone    string        `env:"LOG_TIMEZONE"     envDefault:"Europe/Berlin"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"12h"`

	location *time.Location
}

// Load reads the configuration from the environment. Secrets are read once
// here and never reloaded.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ProviderTimeout <= 0 {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", cfg.ProviderTimeout)
	}

	if cfg.SessionIdleTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_IDLE_TTL must be positive, got %s", cfg.SessionIdleTTL)
	}

	cfg.location, err = time.LoadLocation(cfg.LogTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("load LOG_TIMEZONE %q: %w", cfg.LogTimezone, err)
	}

	return cfg, nil
}

// Location is the zone used for audit log timestamps.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}

	return c.location
}
