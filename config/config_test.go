package config_test

import (
	"testing"
	"time"

	"github.com/Sathursan-S/Ticketer/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.Broker.PublishTimeout)
	assert.Equal(t, "event.dead-letter", cfg.Broker.DeadLetterTopic)
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}

func TestLoad_fromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("POSTGRES_URL", "file:events.db")
	t.Setenv("PUBLISH_TIMEOUT", "250ms")
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "file:events.db", cfg.DB.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Broker.PublishTimeout)
	assert.Equal(t, 3, cfg.Broker.MaxRetries)
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
}

func TestLoad_unknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}
