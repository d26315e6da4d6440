package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate clears the SIERRA_* variables and points the search paths at an
// empty directory.
func isolate(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
sierra:
  endpoint: https://lib.example.edu/iii/sierra-api/v6/
  key: file-key
  secret: file-secret
  timeout: 15s
  legacy_grant: true
token_store:
  type: redis
  redis:
    addr: redis:6379
    db: 2
logging:
  level: debug
output:
  format: yaml
filters:
  Available: 'status.code == "-"'
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://lib.example.edu/iii/sierra-api/v6/", cfg.Sierra.Endpoint)
	assert.Equal(t, "file-key", cfg.Sierra.Key)
	assert.Equal(t, "file-secret", cfg.Sierra.Secret)
	assert.Equal(t, 15*time.Second, cfg.Sierra.Timeout)
	assert.True(t, cfg.Sierra.LegacyGrant)
	assert.Equal(t, StoreRedis, cfg.TokenStore.Type)
	assert.Equal(t, "redis:6379", cfg.TokenStore.Redis.Addr)
	assert.Equal(t, 2, cfg.TokenStore.Redis.DB)
	assert.Equal(t, "sierra:token", cfg.TokenStore.Redis.Key)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, FilterConfig{"available": `status.code == "-"`}, cfg.Filters)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
sierra:
  endpoint: https://lib.example.edu/v6/
  key: k
  secret: s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Sierra.TokenFile)
	assert.Equal(t, time.Minute, cfg.Sierra.Timeout)
	assert.Equal(t, "sierra-go/0.1", cfg.Sierra.UserAgent)
	assert.False(t, cfg.Sierra.LegacyGrant)
	assert.Equal(t, StoreFile, cfg.TokenStore.Type)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Color)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
sierra:
  endpoint: https://file.example.edu/v6/
  key: file-key
  secret: file-secret
`)
	t.Setenv("SIERRA_ENDPOINT", "https://env.example.edu/v6/")
	t.Setenv("SIERRA_SECRET", "env-secret")
	t.Setenv("SIERRA_TOKEN_FILE", "/run/sierra/token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.edu/v6/", cfg.Sierra.Endpoint)
	assert.Equal(t, "file-key", cfg.Sierra.Key)
	assert.Equal(t, "env-secret", cfg.Sierra.Secret)
	assert.Equal(t, "/run/sierra/token", cfg.Sierra.TokenFile)
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sierra.endpoint is required")

	t.Setenv("SIERRA_ENDPOINT", "https://env.example.edu/v6/")
	t.Setenv("SIERRA_KEY", "env-key")
	t.Setenv("SIERRA_SECRET", "env-secret")
	t.Setenv("SIERRA_REDIS_ADDR", "cache:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Sierra.Key)
	assert.Equal(t, "cache:6379", cfg.TokenStore.Redis.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Sierra: SierraConfig{
				Endpoint: "https://lib.example.edu/v6/",
				Key:      "k",
				Secret:   "s",
			},
			TokenStore: TokenStoreConfig{Type: StoreFile},
			Logging:    LoggingConfig{Level: "info", Format: "console"},
			Output:     OutputConfig{Format: "json", Indent: 2},
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "memory store", modify: func(c *Config) { c.TokenStore.Type = StoreMemory }},
		{name: "missing endpoint", modify: func(c *Config) { c.Sierra.Endpoint = "" }, wantErr: "sierra.endpoint"},
		{name: "missing secret", modify: func(c *Config) { c.Sierra.Secret = "" }, wantErr: "sierra.secret"},
		{name: "unknown store", modify: func(c *Config) { c.TokenStore.Type = "s3" }, wantErr: "token_store.type"},
		{name: "redis without addr", modify: func(c *Config) {
			c.TokenStore.Type = StoreRedis
			c.TokenStore.Redis.Addr = ""
		}, wantErr: "token_store.redis.addr"},
		{name: "bad level", modify: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging level"},
		{name: "bad format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging format"},
		{name: "bad output", modify: func(c *Config) { c.Output.Format = "csv" }, wantErr: "output.format"},
		{name: "negative indent", modify: func(c *Config) { c.Output.Indent = -1 }, wantErr: "output.indent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{Sierra: SierraConfig{
		Endpoint:    "https://lib.example.edu/v6/",
		Key:         "k",
		Secret:      "s",
		TokenFile:   "/tmp/tok",
		Timeout:     5 * time.Second,
		UserAgent:   "ua",
		LegacyGrant: true,
	}}

	cc := cfg.ClientConfig()
	assert.Equal(t, "https://lib.example.edu/v6/", cc.Endpoint)
	assert.Equal(t, "k", cc.Key)
	assert.Equal(t, "s", cc.Secret)
	assert.Equal(t, "/tmp/tok", cc.TokenFile)
	assert.Equal(t, 5*time.Second, cc.Timeout)
	assert.Equal(t, "ua", cc.UserAgent)
	assert.True(t, cc.LegacyGrant)
	assert.NoError(t, cc.Validate())
}
