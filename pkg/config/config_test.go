package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, SourceSeed, cfg.Directory.Source)
	assert.Equal(t, 12, cfg.Directory.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Directory.SearchDebounce)
	assert.Equal(t, 4, cfg.Directory.PopularLimit)
	assert.Equal(t, BackendMemory, cfg.Preferences.Backend)
	assert.Equal(t, "dcu-theme-preference", cfg.Preferences.KeyPrefix)
	assert.Equal(t, "dark", cfg.Preferences.DefaultTheme)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DIRECTORY_PAGE_SIZE", "20")
	t.Setenv("DIRECTORY_SEARCH_DEBOUNCE", "150ms")
	t.Setenv("DIRECTORY_SOURCE", "Postgres")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.cu.ac.kr, https://m.cu.ac.kr ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Directory.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.Directory.SearchDebounce)
	assert.Equal(t, SourcePostgres, cfg.Directory.Source)
	assert.Equal(t, []string{"https://portal.cu.ac.kr", "https://m.cu.ac.kr"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("DIRECTORY_PAGE_SIZE", "-3")
	t.Setenv("DIRECTORY_SEARCH_DEBOUNCE", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Directory.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Directory.SearchDebounce)
}
