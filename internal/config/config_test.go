package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 256, cfg.CacheSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKDECK_LISTEN_ADDR", ":9090")
	t.Setenv("TASKDECK_API_BASE_URL", "http://api.internal:8000/")
	t.Setenv("TASKDECK_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 64, cfg.CacheSize)
	// Trailing slashes are stripped so path joining stays simple.
	assert.Equal(t, "http://api.internal:8000", cfg.APIBaseURL)
}
