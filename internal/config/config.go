package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the bot configuration read from the environment (and .env, if present).
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	// GuildID scopes slash command sync to one guild; empty syncs globally.
	GuildID        string  `env:"DISCORD_GUILD_ID"`
	CommandPrefix  string  `env:"COMMAND_PREFIX" envDefault:"!"`
	SyncCommands   bool    `env:"SYNC_COMMANDS" envDefault:"true"`
	SyncRate       float64 `env:"COMMAND_SYNC_RATE" envDefault:"40"`
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool    `env:"LOG_DEV"`
}

// ErrMissingToken is returned when DISCORD_TOKEN is not set and a token is required.
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Load reads .env (when present) and parses the environment.
// The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, loaded, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.CommandPrefix == "" {
		return nil, loaded, errors.New("COMMAND_PREFIX must not be empty")
	}
	if cfg.SyncRate <= 0 {
		return nil, loaded, fmt.Errorf("COMMAND_SYNC_RATE must be positive, got %v", cfg.SyncRate)
	}
	return &cfg, loaded, nil
}

// RequireToken checks the settings needed to connect to Discord.
func (c *Config) RequireToken() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return nil
}
