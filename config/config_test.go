package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
appName: sync-test
commerce:
  projectKey: demo
  clientId: client
  clientSecret: secret
  scopes: ["manage_project:demo"]
struct:
  baseUrl: https://pim.example.com/api
  apiKey: pim-key
import:
  rollBackOnFailure: false
  includeProductStructureAliases: ["all"]
cache:
  driver: redis
  ttl: 2m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "sync-test", cfg.AppName)
	assert.Equal(t, "demo", cfg.Commerce.ProjectKey)
	assert.Equal(t, []string{"manage_project:demo"}, cfg.Commerce.Scopes)
	assert.Equal(t, 30*time.Second, cfg.Commerce.Timeout)
	assert.False(t, cfg.Import.RollBackOnFailure)
	assert.Equal(t, []string{"all"}, cfg.Import.IncludeProductStructureAliases)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
	assert.Equal(t, CacheRedis, cfg.Cache.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "pim-webhooks", cfg.Kafka.WebhookTopic)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CT_PROJECT_KEY", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("IMPORT_ALLOW_CLEAN_COMMERCE", "true")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Commerce.ProjectKey)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Import.AllowCleanCommerce)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, "appName: empty\n"))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingProjectKey)
	assert.ErrorIs(t, err, ErrMissingCommerceAuth)
	assert.ErrorIs(t, err, ErrMissingStructURL)
	assert.ErrorIs(t, err, ErrMissingStructAPIKey)

	cfg.Cache.Driver = "memcached"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCacheDriver)
}
