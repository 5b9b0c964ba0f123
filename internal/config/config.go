// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/basket/internal/modules/settings"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for all databases (always absolute)
	ExportDir string // Directory watched for brokerage export files
	LogLevel  string
	Port      int
	DevMode   bool

	// Engine tunables. Env supplies the initial values; the settings
	// database takes precedence once available (ApplySettings).
	SettleDelay    time.Duration // reorder settle delay
	RescanInterval time.Duration // export directory rescan period, 0 disables
	SnapshotKeep   int           // view snapshots retained
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("BASKET_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	exportDir := getEnv("BASKET_EXPORT_DIR", "")
	if exportDir == "" {
		exportDir = filepath.Join(absDataDir, "exports")
	}
	absExportDir, err := filepath.Abs(exportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve export directory path: %w", err)
	}
	if err := os.MkdirAll(absExportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		ExportDir:      absExportDir,
		Port:           getEnvAsInt("BASKET_PORT", 8420),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SettleDelay:    time.Duration(getEnvAsInt("REORDER_SETTLE_MS", 1500)) * time.Millisecond,
		RescanInterval: time.Duration(getEnvAsInt("EXPORT_RESCAN_SECONDS", 30)) * time.Second,
		SnapshotKeep:   getEnvAsInt("SNAPSHOT_KEEP", 180),
	}

	return cfg, nil
}

// ApplySettings overlays engine tunables from the settings database.
// Called after the workspace database is initialized; settings values
// take precedence over environment variables.
func (c *Config) ApplySettings(repo *settings.Repository) {
	if ms, err := repo.GetInt(settings.KeyReorderSettleMs, int(c.SettleDelay/time.Millisecond)); err == nil && ms >= 0 {
		c.SettleDelay = time.Duration(ms) * time.Millisecond
	}

	if sec, err := repo.GetInt(settings.KeyExportRescanSeconds, int(c.RescanInterval/time.Second)); err == nil && sec >= 0 {
		c.RescanInterval = time.Duration(sec) * time.Second
	}

	if keep, err := repo.GetInt(settings.KeySnapshotKeep, c.SnapshotKeep); err == nil && keep > 0 {
		c.SnapshotKeep = keep
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
