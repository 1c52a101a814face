package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestConfig(t *testing.T) *ConfigStore {
	t.Helper()

	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.DirExists(t, dir)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := setupTestConfig(t)

	require.NoError(t, store.Set(KeyDataDir, "/var/lib/crimeradar"))
	require.NoError(t, store.Set(KeyRateBurst, 5))
	require.NoError(t, store.Set(KeyRateLimit, 2.5))
	require.NoError(t, store.Set("server.http", true))

	assert.Equal(t, "/var/lib/crimeradar", store.GetString(KeyDataDir))
	assert.Equal(t, 5, store.GetInt(KeyRateBurst))
	assert.Equal(t, 2.5, store.GetFloat(KeyRateLimit))
	assert.True(t, store.GetBool("server.http"))

	_, ok := store.Get("unknown.key")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("unknown.key"))
	assert.Zero(t, store.GetInt("unknown.key"))
	assert.Zero(t, store.GetFloat("unknown.key"))
	assert.False(t, store.GetBool("unknown.key"))
}

func TestConfigStore_GetFloat_WidensIntegers(t *testing.T) {
	store := setupTestConfig(t)

	require.NoError(t, store.Set(KeyRateLimit, int64(3)))
	assert.Equal(t, 3.0, store.GetFloat(KeyRateLimit))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyWatchDir, "/srv/incoming"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/incoming", reopened.GetString(KeyWatchDir))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[storage]\ndata_dir = \"/data\"\n\n[server]\nrate_limit = 1.5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/data", store.GetString(KeyDataDir))
	assert.Equal(t, 1.5, store.GetFloat(KeyRateLimit))
}
