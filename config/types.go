package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Sierra     SierraConfig     `mapstructure:"sierra"`
	TokenStore TokenStoreConfig `mapstructure:"token_store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
	Filters    FilterConfig     `mapstructure:"filters"`
}

// SierraConfig holds Sierra API connection details
type SierraConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Key         string        `mapstructure:"key"`
	Secret      string        `mapstructure:"secret"`
	TokenFile   string        `mapstructure:"token_file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	LegacyGrant bool          `mapstructure:"legacy_grant"`
}

// Token store backends
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// TokenStoreConfig selects where the access token is cached
type TokenStoreConfig struct {
	Type  string      `mapstructure:"type"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds connection details for the redis token store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// FilterConfig maps preset names to filter expressions.
// Viper lowercases the names.
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// OutputConfig controls how query results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Indent int    `mapstructure:"indent"`
}
