// file: internal/config/config_test.go
// version: 2.0.0
// guid: 5a6b9af1-6bca-4293-abe5-7913fdaa7b43

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	InitConfig()

	assert.Equal(t, "readora.pebble", AppConfig.DatabasePath)
	assert.Equal(t, "pebble", AppConfig.DatabaseType)
	assert.False(t, AppConfig.EnableSQLite)
	assert.Equal(t, "https://www.dbooks.org/api", AppConfig.CatalogBaseURL)
	assert.Equal(t, 15*time.Second, AppConfig.CatalogTimeout)
	assert.Equal(t, 30*time.Minute, AppConfig.RecentTTL)
	assert.Equal(t, 15*time.Minute, AppConfig.SearchTTL)
	assert.Equal(t, time.Hour, AppConfig.DetailsTTL)
	assert.Equal(t, "downloads", AppConfig.DownloadDir)
	assert.Equal(t, "backups", AppConfig.BackupDir)
	assert.Equal(t, "127.0.0.1", AppConfig.ServerHost)
	assert.Equal(t, "8484", AppConfig.ServerPort)
	assert.Equal(t, 120, AppConfig.ServerRequestsPerMinute)
}

func TestInitConfigNormalizesDatabaseType(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("database_type", "sqlite3")
	viper.Set("recent_ttl", "5m")
	InitConfig()

	assert.Equal(t, "sqlite", AppConfig.DatabaseType)
	assert.Equal(t, 5*time.Minute, AppConfig.RecentTTL)
}

func TestSaveAndLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "readora.yaml")
	cfg := Config{
		DatabasePath:             "/data/readora.pebble",
		DatabaseType:             "pebble",
		CatalogBaseURL:           "http://catalog.local/api",
		CatalogTimeout:           10 * time.Second,
		CatalogRequestsPerSecond: 2.5,
		RecentTTL:                20 * time.Minute,
		SearchTTL:                5 * time.Minute,
		DetailsTTL:               2 * time.Hour,
		DownloadDir:              "/data/books",
		BackupDir:                "/data/backups",
		LogLevel:                 "debug",
		ServerHost:               "0.0.0.0",
		ServerPort:               "9000",
		ServerRequestsPerMinute:  30,
	}

	require.NoError(t, SaveConfigToFile(cfg, path))

	loaded, err := LoadConfigFromFile(Config{}, path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigKeepsUnsetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_ttl: 1m\nrecent_ttl: nonsense\nlog_level: warn\n"), 0644))

	base := Config{DatabasePath: "keep.pebble", RecentTTL: time.Hour, SearchTTL: time.Hour}
	loaded, err := LoadConfigFromFile(base, path)
	require.NoError(t, err)

	assert.Equal(t, "keep.pebble", loaded.DatabasePath)
	assert.Equal(t, time.Minute, loaded.SearchTTL)
	assert.Equal(t, time.Hour, loaded.RecentTTL, "invalid durations are ignored")
	assert.Equal(t, "warn", loaded.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigFromFile(Config{}, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unclosed\n"), 0644))
	_, err = LoadConfigFromFile(Config{}, path)
	assert.Error(t, err)

	assert.Error(t, SaveConfigToFile(Config{}, ""))
}

func TestMarshalYAMLWritesReadableDurations(t *testing.T) {
	out, err := MarshalYAML(Config{RecentTTL: 30 * time.Minute, CatalogTimeout: 15 * time.Second})
	require.NoError(t, err)
	assert.Contains(t, string(out), "recent_ttl: 30m0s")
	assert.Contains(t, string(out), "catalog_timeout: 15s")
}
