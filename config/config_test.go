package config

import (
	"log/slog"
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

func TestLoadFile(t *testing.T) {
	t.Run("Full", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
http_server_addr: ":9090"
storage:
  driver: badger
  badger_path: /var/lib/storefront
catalog_api:
  base_url: https://fakestoreapi.com
  timeout: 2s
  rate_limit: 5
  retries: 2
users_api:
  base_url: http://users:3000
  token: secret
session:
  default_budget: 2500.5
broker:
  seed_brokers: [kafka-1:9092, kafka-2:9092]
  schema_registry_urls: [http://sr:8081]
  tls:
    ca: /certs/ca.pem
  topics:
    checkouts: shop.checkouts
  consumers:
    spending_group: shop.spending
`)
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, ":9090", cfg.HTTPServerAddr)
		assert.Equal(t, "badger", cfg.Storage.Driver)
		assert.Equal(t, "/var/lib/storefront", cfg.Storage.BadgerPath)
		assert.Equal(t, 2*time.Second, cfg.CatalogAPI.Timeout)
		assert.Equal(t, 5.0, cfg.CatalogAPI.RateLimit)
		assert.Equal(t, 2, cfg.CatalogAPI.Retries)
		assert.Equal(t, "http://users:3000", cfg.UsersAPI.BaseURL)
		assert.Equal(t, "secret", cfg.UsersAPI.Token)
		assert.Equal(t, 5*time.Second, cfg.UsersAPI.Timeout)
		assert.Equal(t, 2500.5, cfg.Session.DefaultBudget)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.SeedBrokers)
		assert.True(t, cfg.Broker.Enabled())
		assert.True(t, cfg.Broker.TLS.Enabled())
		assert.Equal(t, "shop.checkouts", cfg.Broker.Topics.Checkouts)
		assert.Equal(t, "shop.spending", cfg.Broker.Consumers.SpendingGroup)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadFile(writeConfig(t, "http_server_addr: \":8000\"\n"))
		require.NoError(t, err)

		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, 10000.0, cfg.Session.DefaultBudget)
		assert.False(t, cfg.Broker.Enabled())
		assert.False(t, cfg.Broker.TLS.Enabled())
		assert.Equal(t, "checkouts", cfg.Broker.Topics.Checkouts)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "unknown_key: 1\n"))
		require.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "log_level: loud\n"))
		require.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t,
		"postgres://shop:***@db:5432/shop",
		maskDSN("postgres://shop:pass@db:5432/shop"),
	)
	assert.Equal(t, "postgres://db/shop", maskDSN("postgres://db/shop"))
	assert.Empty(t, maskDSN(""))
}
