package config_test

import (
	"testing"
	"time"

	"github.com/aretw0/fernspiel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "fernspiel:events", cfg.RedisChannel)
	assert.True(t, cfg.SimPhone)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Addr)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"FERNSPIEL_TICK_INTERVAL": "25ms",
		"FERNSPIEL_ADDR":          ":8080",
		"FERNSPIEL_REDIS_ADDR":    "localhost:6379",
		"FERNSPIEL_JOURNAL":       "/var/lib/fernspiel/journal.db",
		"FERNSPIEL_DEBUG":         "true",
		"FERNSPIEL_SIM_PHONE":     "false",
		"FERNSPIEL_WATCH":         "1",
	})
	require.NoError(t, err)

	assert.Equal(t, 25*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "/var/lib/fernspiel/journal.db", cfg.Journal)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.SimPhone)
	assert.True(t, cfg.Watch)
}

func TestLoadFrom_Invalid(t *testing.T) {
	_, err := config.LoadFrom(map[string]string{"FERNSPIEL_TICK_INTERVAL": "soon"})
	assert.Error(t, err)

	_, err = config.LoadFrom(map[string]string{"FERNSPIEL_TICK_INTERVAL": "0s"})
	assert.Error(t, err)
}

func TestLoadFrom_Redis(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"FERNSPIEL_REDIS_PASSWORD": "secret",
		"FERNSPIEL_REDIS_DB":       "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)

	_, err = config.LoadFrom(map[string]string{"FERNSPIEL_REDIS_DB": "-1"})
	assert.Error(t, err)
}
