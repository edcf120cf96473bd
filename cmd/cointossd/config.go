// config.go - Configuration management for the coin toss sandbox daemon
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the daemon configuration
type Config struct {
	// Protocol settings
	BetAmount   int64 `json:"bet_amount"`
	HouseFloat  int64 `json:"house_float"`  // initial house bankroll
	UserFunding int64 `json:"user_funding"` // initial balance of the demo user

	// File paths
	NoteLogPath string `json:"note_log_path"`
	KeyDir      string `json:"key_dir"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// HTTP API
	HTTPPort        int `json:"http_port"`
	RateLimitBurst  int `json:"rate_limit_burst"`
	RateLimitPerSec int `json:"rate_limit_per_sec"`

	// Security
	EnableAudit  bool   `json:"enable_audit"`
	AuditLogPath string `json:"audit_log_path"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BetAmount:       100,
		HouseFloat:      10000,
		UserFunding:     1000,
		NoteLogPath:     "notelog.json",
		KeyDir:          "keys",
		LogLevel:        "info",
		LogFile:         "cointoss.log",
		HTTPPort:        8080,
		RateLimitBurst:  20,
		RateLimitPerSec: 5,
		EnableAudit:     true,
		AuditLogPath:    "audit.log",
	}
}

// LoadConfig loads configuration from file or creates default
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		var config Config
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		return &config, nil
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save default config: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BetAmount <= 0 {
		return fmt.Errorf("bet_amount must be positive")
	}
	if c.HouseFloat < 2*c.BetAmount {
		return fmt.Errorf("house_float must cover at least one bet")
	}
	if c.UserFunding < c.BetAmount {
		return fmt.Errorf("user_funding must cover at least one stake")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be a valid port")
	}
	if c.RateLimitBurst <= 0 || c.RateLimitPerSec <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}
