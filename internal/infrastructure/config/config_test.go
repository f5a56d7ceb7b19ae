package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.GRPCAddr())
		assert.Equal(t, ":8080", cfg.HTTPAddr())
		assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
		assert.False(t, cfg.Kafka.Enabled())
		assert.Equal(t, 256, cfg.NotifyBuffer)
		assert.False(t, cfg.GRPC.Reflection)
		assert.Equal(t, 7, cfg.Offer.ValidForDays)
		assert.True(t, cfg.Offer.WireFee.Equal(decimal.NewFromInt(5_000)))
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("GRPC_PORT", "7000")
		t.Setenv("STORAGE_DRIVER", "MEMORY")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("OFFER_WIRE_FEE", "7500")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 7000, cfg.GRPCPort)
		assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.True(t, cfg.Offer.WireFee.Equal(decimal.NewFromInt(7_500)))
	})

	t.Run("config file is read and environment still wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "factoring.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http_port: 8181\nlog_level: debug\ndb_name: file_db\n"), 0o600))
		t.Setenv(config.ConfigFileEnv, path)
		t.Setenv("DB_NAME", "env_db")

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, 8181, cfg.HTTPPort)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "env_db", cfg.DB.Name)
	})

	t.Run("malformed fee is an error", func(t *testing.T) {
		t.Setenv("OFFER_MIN_PROCESSING_FEE", "fifty")

		_, err := config.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OFFER_MIN_PROCESSING_FEE")
	})
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) config.Config {
		t.Helper()
		cfg, err := config.Load()
		require.NoError(t, err)
		cfg.DB.Password = "secret"
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid(t).Validate())
	})

	t.Run("postgres requires a password", func(t *testing.T) {
		cfg := valid(t)
		cfg.DB.Password = ""
		assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")
	})

	t.Run("memory driver needs no password", func(t *testing.T) {
		cfg := valid(t)
		cfg.DB.Password = ""
		cfg.StorageDriver = config.StorageMemory
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver and bad policy are both reported", func(t *testing.T) {
		cfg := valid(t)
		cfg.StorageDriver = "mysql"
		cfg.Offer.ValidForDays = 0

		err := cfg.Validate()
		assert.ErrorContains(t, err, "STORAGE_DRIVER")
		assert.ErrorContains(t, err, "offer validity")
	})

	t.Run("grpc tls files must come in pairs", func(t *testing.T) {
		cfg := valid(t)
		cfg.GRPC.TLSCertFile = "/etc/factoring/tls.crt"
		assert.ErrorContains(t, cfg.Validate(), "GRPC_TLS_KEY_FILE")
		assert.False(t, cfg.GRPC.TLSEnabled())

		cfg.GRPC.TLSKeyFile = "/etc/factoring/tls.key"
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.GRPC.TLSEnabled())
	})
}
