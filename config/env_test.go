package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFiles_Precedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	yamlPath := filepath.Join(dir, "app.yaml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"4000","api_timeout":"2s"}`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("app_port: 4100\nquery_ttl: 1m\n"), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=4200\nAPI_BASE_URL=http://backend:9000/api/\n"), 0o600))

	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})

	require.NoError(t, loadFromFiles(jsonPath, yamlPath, envPath))

	assert.Equal(t, "4200", get("APP_PORT", ""))
	assert.Equal(t, 2*time.Second, duration("API_TIMEOUT", time.Second))
	assert.Equal(t, time.Minute, duration("QUERY_TTL", time.Second))
	assert.Equal(t, "http://backend:9000/api/", get("API_BASE_URL", ""))
}

func TestLoadFromFiles_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})

	require.NoError(t, loadFromFiles(
		filepath.Join(dir, "nope.json"),
		filepath.Join(dir, "nope.yaml"),
		filepath.Join(dir, ".env"),
	))
	assert.Equal(t, defaultAPIBaseURL, get("API_BASE_URL", ""))
	assert.Equal(t, defaultAPITimeout, duration("API_TIMEOUT", 0))
}

func TestLoadFromFiles_BadJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{not json`), 0o600))

	err := loadFromFiles(jsonPath, filepath.Join(dir, "x.yaml"), filepath.Join(dir, ".env"))
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	restore := Override(map[string]string{"api_timeout": "250ms", "EXPORT_WORKERS": "0"})
	assert.Equal(t, 250*time.Millisecond, APITimeout())
	assert.Equal(t, defaultExportPool, ExportWorkers())

	restore()
	assert.Equal(t, defaultAPITimeout, APITimeout())
}

func TestCacheDriverFallsBackToMemory(t *testing.T) {
	restore := Override(map[string]string{"CACHE_DRIVER": "memcached"})
	defer restore()
	assert.Equal(t, "memory", CacheDriver())
}
