package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/todo-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Contains(t, cfg.Database.URL, "postgres://")
	assert.False(t, cfg.Database.UsePgBouncer)
	assert.False(t, cfg.Database.EchoQueries)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TODO_SERVER_PORT", "9999")
	t.Setenv("TODO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TODO_DATABASE_URL", "postgres://app:secret@db:5432/todos")
	t.Setenv("TODO_DATABASE_USE_PGBOUNCER", "true")
	t.Setenv("TODO_DATABASE_ECHO_QUERIES", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://app:secret@db:5432/todos", cfg.Database.URL)
	assert.True(t, cfg.Database.UsePgBouncer)
	assert.True(t, cfg.Database.EchoQueries)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("TODO_SERVER_LOG_LEVEL", "verbose")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsOutOfRangePort(t *testing.T) {
	t.Setenv("TODO_SERVER_PORT", "70000")

	_, err := config.Load()
	require.Error(t, err)
}
