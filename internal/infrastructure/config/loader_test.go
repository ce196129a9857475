package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useConfigDir(t *testing.T, env, yaml string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".yaml"), []byte(yaml), 0o600))

	paths, dotEnv := ConfigPaths, DotEnvPaths
	ConfigPaths, DotEnvPaths = []string{dir}, nil
	t.Cleanup(func() { ConfigPaths, DotEnvPaths = paths, dotEnv })

	t.Setenv("STOCKSIM_ENV", env)
}

func TestLoadConfigDefaultsAndUnits(t *testing.T) {
	useConfigDir(t, Test, `
database:
  driver: memory
priceOracle:
  apiKey: pk_test
session:
  ttl: 30
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowThreshold)

	assert.Equal(t, "pk_test", cfg.PriceOracle.APIKey)
	assert.Equal(t, "https://cloud.iexapis.com/stable", cfg.PriceOracle.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.PriceOracle.Timeout)

	assert.Equal(t, "stocksim_session", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "10000.00", cfg.Trading.InitialCash)
	assert.Empty(t, cfg.Events.Brokers)
	assert.Equal(t, "trade.committed", cfg.Events.Topic)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	useConfigDir(t, Development, `
database:
  host: localhost
  username: app
priceOracle:
  apiKey: from-file
`)
	t.Setenv("STOCKSIM_API_KEY", "from-env")
	t.Setenv("STOCKSIM_DB_HOST", "db.internal")
	t.Setenv("STOCKSIM_DB_QUERY_TIMEOUT_SECONDS", "9")
	t.Setenv("STOCKSIM_SESSION_TTL_MINUTES", "5")
	t.Setenv("STOCKSIM_SESSION_SECURE", "true")
	t.Setenv("STOCKSIM_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STOCKSIM_INITIAL_CASH", "500.50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "from-env", cfg.PriceOracle.APIKey)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "app", cfg.Database.Username)
	assert.Equal(t, 9*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, "500.50", cfg.Trading.InitialCash)
}

func TestLoadConfigMissingFile(t *testing.T) {
	useConfigDir(t, Test, "")
	t.Setenv("STOCKSIM_ENV", Production)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,,b "))
	assert.Nil(t, splitList(" , "))
}
