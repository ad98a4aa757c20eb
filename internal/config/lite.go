// This file contains the lightweight configuration for the standalone
// MCP binary, which runs without a config file.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// LiteConfig is a simplified configuration for standalone stdio operation.
// It requires no config file and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// Knowledge base
	DatasetPath string // Optional: external criteria dataset (empty uses embedded)

	// Feedback capture
	FeedbackEnabled bool

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".imaging-appropriateness-mcp")

	return &LiteConfig{
		DataDir:         dataDir,
		DatasetPath:     "",
		FeedbackEnabled: true,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Data directory
	if v := os.Getenv("IMG_APPROP_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Knowledge base
	if v := os.Getenv("IMG_APPROP_DATASET_PATH"); v != "" {
		cfg.DatasetPath = v
	}

	// Feedback capture
	if v := os.Getenv("IMG_APPROP_FEEDBACK_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FeedbackEnabled = b
		}
	}

	// Logging
	if v := os.Getenv("IMG_APPROP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("IMG_APPROP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// FeedbackDBPath returns the path to the feedback SQLite database.
func (c *LiteConfig) FeedbackDBPath() string {
	return filepath.Join(c.DataDir, "feedback.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
