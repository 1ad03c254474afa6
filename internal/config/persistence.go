// file: internal/config/persistence.go
// version: 2.0.0
// guid: c365743b-3bb7-4995-8cc5-d2459d41ed15

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk YAML shape. Durations are written as strings
// ("30m0s") so the file stays readable and viper can parse it back.
type fileConfig struct {
	DatabasePath             string  `yaml:"database_path"`
	DatabaseType             string  `yaml:"database_type"`
	EnableSQLite             bool    `yaml:"enable_sqlite3_i_know_the_risks"`
	CatalogBaseURL           string  `yaml:"catalog_base_url"`
	CatalogTimeout           string  `yaml:"catalog_timeout"`
	CatalogRequestsPerSecond float64 `yaml:"catalog_requests_per_second"`
	RecentTTL                string  `yaml:"recent_ttl"`
	SearchTTL                string  `yaml:"search_ttl"`
	DetailsTTL               string  `yaml:"details_ttl"`
	DownloadDir              string  `yaml:"download_dir"`
	BackupDir                string  `yaml:"backup_dir"`
	LogLevel                 string  `yaml:"log_level"`
	ServerHost               string  `yaml:"server_host"`
	ServerPort               string  `yaml:"server_port"`
	ServerRequestsPerMinute  int     `yaml:"server_requests_per_minute"`
}

// MarshalYAML renders cfg in the config file format.
func MarshalYAML(cfg Config) ([]byte, error) {
	out := fileConfig{
		DatabasePath:             cfg.DatabasePath,
		DatabaseType:             cfg.DatabaseType,
		EnableSQLite:             cfg.EnableSQLite,
		CatalogBaseURL:           cfg.CatalogBaseURL,
		CatalogTimeout:           cfg.CatalogTimeout.String(),
		CatalogRequestsPerSecond: cfg.CatalogRequestsPerSecond,
		RecentTTL:                cfg.RecentTTL.String(),
		SearchTTL:                cfg.SearchTTL.String(),
		DetailsTTL:               cfg.DetailsTTL.String(),
		DownloadDir:              cfg.DownloadDir,
		BackupDir:                cfg.BackupDir,
		LogLevel:                 cfg.LogLevel,
		ServerHost:               cfg.ServerHost,
		ServerPort:               cfg.ServerPort,
		ServerRequestsPerMinute:  cfg.ServerRequestsPerMinute,
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes cfg as YAML to path, creating parent directories.
func SaveConfigToFile(cfg Config, path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	data, err := MarshalYAML(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	log.Printf("[INFO] Saved config to %s", path)
	return nil
}

// LoadConfigFromFile reads a YAML config file written by SaveConfigToFile.
// Keys missing from the file keep the values already in cfg.
func LoadConfigFromFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	in := fileConfig{}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString := func(key string, dst *string, v string) {
		if _, ok := raw[key]; ok {
			*dst = v
		}
	}
	setString("database_path", &cfg.DatabasePath, in.DatabasePath)
	setString("database_type", &cfg.DatabaseType, in.DatabaseType)
	setString("catalog_base_url", &cfg.CatalogBaseURL, in.CatalogBaseURL)
	setString("download_dir", &cfg.DownloadDir, in.DownloadDir)
	setString("backup_dir", &cfg.BackupDir, in.BackupDir)
	setString("log_level", &cfg.LogLevel, in.LogLevel)
	setString("server_host", &cfg.ServerHost, in.ServerHost)
	setString("server_port", &cfg.ServerPort, in.ServerPort)

	if _, ok := raw["enable_sqlite3_i_know_the_risks"]; ok {
		cfg.EnableSQLite = in.EnableSQLite
	}
	if _, ok := raw["catalog_requests_per_second"]; ok {
		cfg.CatalogRequestsPerSecond = in.CatalogRequestsPerSecond
	}
	if _, ok := raw["server_requests_per_minute"]; ok {
		cfg.ServerRequestsPerMinute = in.ServerRequestsPerMinute
	}

	durations := []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"catalog_timeout", in.CatalogTimeout, &cfg.CatalogTimeout},
		{"recent_ttl", in.RecentTTL, &cfg.RecentTTL},
		{"search_ttl", in.SearchTTL, &cfg.SearchTTL},
		{"details_ttl", in.DetailsTTL, &cfg.DetailsTTL},
	}
	for _, d := range durations {
		if _, ok := raw[d.key]; !ok {
			continue
		}
		parsed, err := time.ParseDuration(d.val)
		if err != nil {
			log.Printf("Warning: invalid %s %q in %s: %v", d.key, d.val, path, err)
			continue
		}
		*d.dst = parsed
	}

	return cfg, nil
}
