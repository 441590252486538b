package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "microauth.registry.events", cfg.Kafka.Topic)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.True(t, cfg.UsingDevSigningKey())
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_Environment(t *testing.T) {
	admin := strings.Repeat("A", 60)
	t.Setenv("MICROAUTH_ADMIN_ADDRESS", admin)
	t.Setenv("MICROAUTH_STORE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SIGNING_KEY", "a-real-key")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, admin, cfg.AdminAddress)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.KafkaEnabled())
	assert.False(t, cfg.UsingDevSigningKey())
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MICROAUTH_ADDR", ":9000")

	cfg, err := Load([]string{"--addr", ":9100", "--log.format", "text"})
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_Rejections(t *testing.T) {
	t.Run("malformed admin", func(t *testing.T) {
		_, err := Load([]string{"--admin-address", "admin"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "admin address")
	})

	t.Run("postgres without url", func(t *testing.T) {
		_, err := Load([]string{"--store", "postgres"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("unknown backend is rejected by choice", func(t *testing.T) {
		_, err := Load([]string{"--store", "sqlite"})
		require.Error(t, err)
	})

	t.Run("dev signing key outside development", func(t *testing.T) {
		_, err := Load([]string{"--environment", "production"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")

		cfg, err := Load([]string{"--environment", "production", "--jwt.signing-key", "prod-key"})
		require.NoError(t, err)
		assert.False(t, cfg.UsingDevSigningKey())
	})

	t.Run("help", func(t *testing.T) {
		_, err := Load([]string{"--help"})
		assert.True(t, IsHelp(err))
	})
}
