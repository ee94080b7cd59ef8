package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg := Load()
	require.Equal(t, "", cfg.DatabaseURL)
	require.Equal(t, 20, cfg.MaxOpenConns)
	require.Equal(t, 10, cfg.MaxIdleConns)
	require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, StorePostgres, cfg.Store)
	require.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	require.False(t, cfg.MigrateOnStart)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, "notes.events", cfg.KafkaTopic)
	require.Empty(t, cfg.TracingEndpoint)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
		os.Setenv("DB_MAX_OPEN", "5")
		os.Setenv("DB_MAX_IDLE", "2")
		os.Setenv("DB_CONN_MAX_LIFETIME", "1m")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "10s")
		os.Setenv("HTTP_ADDR", ":9999")
		os.Setenv("STORE", "Memory")
		os.Setenv("SESSION_TTL", "2h")
		os.Setenv("MIGRATE_ON_START", "true")
		os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
		os.Setenv("KAFKA_TOPIC", "changes")
		os.Setenv("TRACING_ENDPOINT", "http://jaeger:14268/api/traces")
		os.Setenv("LOG_LEVEL", "debug")

		cfg := Load()
		require.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.DatabaseURL)
		require.Equal(t, 5, cfg.MaxOpenConns)
		require.Equal(t, 2, cfg.MaxIdleConns)
		require.Equal(t, time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 10*time.Second, cfg.ConnMaxIdleTime)
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.Equal(t, StoreMemory, cfg.Store)
		require.Equal(t, 2*time.Hour, cfg.SessionTTL)
		require.True(t, cfg.MigrateOnStart)
		require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		require.Equal(t, "changes", cfg.KafkaTopic)
		require.Equal(t, "http://jaeger:14268/api/traces", cfg.TracingEndpoint)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("DB_MAX_OPEN", "abc")
		os.Setenv("DB_MAX_IDLE", "xyz")
		os.Setenv("DB_CONN_MAX_LIFETIME", "bad")
		os.Setenv("DB_CONN_MAX_IDLE_TIME", "bad")
		os.Setenv("MIGRATE_ON_START", "maybe")

		cfg := Load()
		require.Equal(t, 20, cfg.MaxOpenConns)
		require.Equal(t, 10, cfg.MaxIdleConns)
		require.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
		require.Equal(t, 5*time.Minute, cfg.ConnMaxIdleTime)
		require.False(t, cfg.MigrateOnStart)
	})
}

func TestValidate(t *testing.T) {
	base := Config{Store: StorePostgres, DatabaseURL: "postgres://x", SessionTTL: time.Hour}
	require.NoError(t, base.Validate())

	noURL := base
	noURL.DatabaseURL = ""
	require.Error(t, noURL.Validate())

	mem := noURL
	mem.Store = StoreMemory
	require.NoError(t, mem.Validate())

	bad := base
	bad.Store = "sqlite"
	require.Error(t, bad.Validate())

	noTTL := base
	noTTL.SessionTTL = 0
	require.Error(t, noTTL.Validate())
}

func TestLoadDotenv(t *testing.T) {
	t.Cleanup(os.Clearenv)
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:1111\nSTORE=memory\n"), 0o600))

	require.NoError(t, LoadDotenv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg := Load()
	require.Equal(t, ":7000", cfg.HTTPAddr)
	require.Equal(t, StoreMemory, cfg.Store)
}
