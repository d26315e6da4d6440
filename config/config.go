package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/s0up4200/sierra/sierra"
)

// Environment variables that override the config file
var envBindings = map[string]string{
	"sierra.endpoint":        "SIERRA_ENDPOINT",
	"sierra.key":             "SIERRA_KEY",
	"sierra.secret":          "SIERRA_SECRET",
	"sierra.token_file":      "SIERRA_TOKEN_FILE",
	"token_store.redis.addr": "SIERRA_REDIS_ADDR",
}

// Load loads the configuration from file and environment.
//
// An explicit configPath must exist. Without one the standard locations are
// searched and a missing file is fine as long as the environment supplies
// the required settings.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sierra"))
		}

		// Check /etc
		v.AddConfigPath("/etc/sierra/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Sierra defaults
	v.SetDefault("sierra.token_file", sierra.DefaultTokenFile())
	v.SetDefault("sierra.timeout", sierra.DefaultTimeout)
	v.SetDefault("sierra.user_agent", sierra.DefaultUserAgent)
	v.SetDefault("sierra.legacy_grant", false)

	// Token store defaults
	v.SetDefault("token_store.type", StoreFile)
	v.SetDefault("token_store.redis.addr", "localhost:6379")
	v.SetDefault("token_store.redis.key", "sierra:token")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	// Output defaults
	v.SetDefault("output.format", "json")
	v.SetDefault("output.indent", 2)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Sierra.Endpoint == "" {
		return fmt.Errorf("sierra.endpoint is required")
	}

	if cfg.Sierra.Key == "" || cfg.Sierra.Secret == "" {
		return fmt.Errorf("sierra.key and sierra.secret must be set")
	}

	// Validate token store
	switch cfg.TokenStore.Type {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if cfg.TokenStore.Redis.Addr == "" {
			return fmt.Errorf("token_store.redis.addr is required for the redis store")
		}
	default:
		return fmt.Errorf("invalid token_store.type: %s (must be 'file', 'memory' or 'redis')", cfg.TokenStore.Type)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	// Validate output format
	if cfg.Output.Format != "json" && cfg.Output.Format != "yaml" {
		return fmt.Errorf("invalid output.format: %s (must be 'json' or 'yaml')", cfg.Output.Format)
	}
	if cfg.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative")
	}

	return nil
}

// ClientConfig converts the sierra section for sierra.NewClient.
func (c *Config) ClientConfig() sierra.Config {
	return sierra.Config{
		Endpoint:    c.Sierra.Endpoint,
		Key:         c.Sierra.Key,
		Secret:      c.Sierra.Secret,
		TokenFile:   c.Sierra.TokenFile,
		Timeout:     c.Sierra.Timeout,
		UserAgent:   c.Sierra.UserAgent,
		LegacyGrant: c.Sierra.LegacyGrant,
	}
}
