// Package config loads the process configuration from the environment, with
// .env autoload for local runs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, constructed once at startup
// and passed by reference to every component that needs it.
type Config struct {
	Token       string `env:"BOT_TOKEN,required"`
	StoragePath string `env:"STORAGE_PATH" envDefault:"data/botkit.json"`

	Prefix      string `env:"BOT_PREFIX" envDefault:"!"`
	OwnerPrefix string `env:"OWNER_PREFIX" envDefault:"botkit."`
	AdminPrefix string `env:"ADMIN_PREFIX" envDefault:"botkit!"`

	OwnerIDs []string `env:"OWNER_IDS" envSeparator:","`
	AdminIDs []string `env:"ADMIN_IDS" envSeparator:","`

	GuildCacheSize    int `env:"GUILD_CACHE_SIZE" envDefault:"256"`
	TelemetryBuffer   int `env:"TELEMETRY_BUFFER" envDefault:"256"`
	CooldownDefaultMs int `env:"COOLDOWN_DEFAULT_MS" envDefault:"3000"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// New reads the environment (loading .env first when present) and returns
// the parsed configuration.
func New() (*Config, error) {
	// Missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
