package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "local", cfg.Env)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "hr", cfg.Database.Database)

	assert.Equal(t, "staffsense_index.db", cfg.VectorStore.Path)
	assert.Equal(t, 1536, cfg.VectorStore.Dimensions)

	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.Endpoint)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)

	assert.False(t, cfg.Router.ForceFallback)
	assert.Equal(t, 20, cfg.Router.FallbackTopK)

	assert.Equal(t, 60, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "sync_state.json", cfg.Sync.CheckpointPath)

	assert.Empty(t, cfg.Redis.Host, "Redis is opt-in")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8123")
	t.Setenv("PGPASSWORD", "secret")
	t.Setenv("ROUTER_FORCE_FALLBACK", "true")
	t.Setenv("SYNC_INTERVAL_SECONDS", "5")
	t.Setenv("VECTOR_DIMENSIONS", "768")

	cfg, err := Load("v")
	require.NoError(t, err)

	assert.Equal(t, "8123", cfg.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.True(t, cfg.Router.ForceFallback)
	assert.Equal(t, 5*time.Second, cfg.Sync.Interval())
	assert.Equal(t, 768, cfg.VectorStore.Dimensions)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero dimensions", "VECTOR_DIMENSIONS", "0"},
		{"negative sync interval", "SYNC_INTERVAL_SECONDS", "-1"},
		{"zero fallback top k", "ROUTER_FALLBACK_TOP_K", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("v")
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "reader",
		Password: "pw",
		Database: "hr",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=reader password=pw dbname=hr sslmode=require",
		c.ConnectionString())
}

func TestSyncConfig_Interval(t *testing.T) {
	c := SyncConfig{IntervalSeconds: 90}
	assert.Equal(t, 90*time.Second, c.Interval())
}
