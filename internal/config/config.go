// file: internal/config/config.go
// version: 2.0.0
// guid: 873d5f94-73db-4f6e-bea4-5abebd77f48e

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string `yaml:"database_path"`
	DatabaseType string `yaml:"database_type"` // "pebble" (default), "sqlite" or "memory"
	EnableSQLite bool   `yaml:"enable_sqlite3_i_know_the_risks"`

	CatalogBaseURL           string        `yaml:"catalog_base_url"`
	CatalogTimeout           time.Duration `yaml:"catalog_timeout"`
	CatalogRequestsPerSecond float64       `yaml:"catalog_requests_per_second"`

	RecentTTL  time.Duration `yaml:"recent_ttl"`
	SearchTTL  time.Duration `yaml:"search_ttl"`
	DetailsTTL time.Duration `yaml:"details_ttl"`

	DownloadDir string `yaml:"download_dir"`
	BackupDir   string `yaml:"backup_dir"`
	LogLevel    string `yaml:"log_level"`

	ServerHost              string `yaml:"server_host"`
	ServerPort              string `yaml:"server_port"`
	ServerRequestsPerMinute int    `yaml:"server_requests_per_minute"` // 0 disables the limiter
}

var AppConfig Config

// SetDefaults registers default values with viper.
func SetDefaults() {
	viper.SetDefault("database_path", "readora.pebble")
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("catalog_base_url", "https://www.dbooks.org/api")
	viper.SetDefault("catalog_timeout", 15*time.Second)
	viper.SetDefault("catalog_requests_per_second", 0.0)
	viper.SetDefault("recent_ttl", 30*time.Minute)
	viper.SetDefault("search_ttl", 15*time.Minute)
	viper.SetDefault("details_ttl", time.Hour)
	viper.SetDefault("download_dir", "downloads")
	viper.SetDefault("backup_dir", "backups")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", "8484")
	viper.SetDefault("server_requests_per_minute", 120)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		DatabasePath:             viper.GetString("database_path"),
		DatabaseType:             viper.GetString("database_type"),
		EnableSQLite:             viper.GetBool("enable_sqlite3_i_know_the_risks"),
		CatalogBaseURL:           viper.GetString("catalog_base_url"),
		CatalogTimeout:           viper.GetDuration("catalog_timeout"),
		CatalogRequestsPerSecond: viper.GetFloat64("catalog_requests_per_second"),
		RecentTTL:                viper.GetDuration("recent_ttl"),
		SearchTTL:                viper.GetDuration("search_ttl"),
		DetailsTTL:               viper.GetDuration("details_ttl"),
		DownloadDir:              viper.GetString("download_dir"),
		BackupDir:                viper.GetString("backup_dir"),
		LogLevel:                 viper.GetString("log_level"),
		ServerHost:               viper.GetString("server_host"),
		ServerPort:               viper.GetString("server_port"),
		ServerRequestsPerMinute:  viper.GetInt("server_requests_per_minute"),
	}

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}
	if AppConfig.CatalogTimeout <= 0 {
		AppConfig.CatalogTimeout = 15 * time.Second
	}
}
