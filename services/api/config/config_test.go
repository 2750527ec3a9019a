package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "PORT", "API_PORT", "OCCUPANCY_HISTORY_LIMIT",
		"OCCUPANCY_REFRESH_INTERVAL", "OCCUPANCY_QUERY_TIMEOUT", "OCCUPANCY_REFRESH_ON_READ",
		"OCCUPANCY_TABLE", "OCCUPANCY_PERSONS_COLUMN", "OCCUPANCY_TIMESTAMP_COLUMN",
		"BREAKER_FAILURE_THRESHOLD", "BREAKER_OPEN_TIMEOUT", "REDIS_URL",
		"API_BEARER_TOKEN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/occupancy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.ListenAddr())
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 60*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.RefreshOnRead)
	assert.Equal(t, "room_state", cfg.ReadingsTable)
	assert.Equal(t, "total_persons", cfg.PersonsColumn)
	assert.Equal(t, "timestamp", cfg.TimestampColumn)
	assert.Equal(t, uint32(5), cfg.BreakerThreshold)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/occupancy")
	t.Setenv("API_PORT", "8081")
	t.Setenv("OCCUPANCY_HISTORY_LIMIT", "10")
	t.Setenv("OCCUPANCY_REFRESH_INTERVAL", "15s")
	t.Setenv("OCCUPANCY_QUERY_TIMEOUT", "2s")
	t.Setenv("OCCUPANCY_REFRESH_ON_READ", "TRUE")
	t.Setenv("OCCUPANCY_TABLE", "sensors.correlated_persons")
	t.Setenv("OCCUPANCY_PERSONS_COLUMN", "estimated_actual_persons")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 15*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.RefreshOnRead)
	assert.Equal(t, "sensors.correlated_persons", cfg.ReadingsTable)
	assert.Equal(t, "estimated_actual_persons", cfg.PersonsColumn)
	assert.Equal(t, uint32(3), cfg.BreakerThreshold)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                       "abc",
		"OCCUPANCY_HISTORY_LIMIT":    "0",
		"OCCUPANCY_REFRESH_INTERVAL": "-5s",
		"OCCUPANCY_QUERY_TIMEOUT":    "soon",
		"BREAKER_FAILURE_THRESHOLD":  "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "postgres://localhost/occupancy")
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
