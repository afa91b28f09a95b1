package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/acctkeeper/internal/logging"
)

// Config holds runtime settings for the acctkeeper CLI.
type Config struct {
	// DatabasePath is the SQLite file holding the vault metadata.
	DatabasePath string
	// AutoFillOTP reveals the pending account's code automatically when
	// the login flow reaches the one-time code prompt.
	AutoFillOTP bool
	// AutoLockMinutes locks the vault this many whole minutes after
	// unlock. 0 disables auto-lock.
	AutoLockMinutes int
	// AutoLockPollInterval is how often the auto-lock threshold is checked.
	AutoLockPollInterval time.Duration
	LogFormat            string
	LogLevel             string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = filepath.Join("data", "acctkeeper.db")
	c.AutoFillOTP = true
	c.AutoLockMinutes = 0
	c.AutoLockPollInterval = 30 * time.Second
	c.LogFormat = logging.FormatConsole
	c.LogLevel = "info"
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.AutoLockMinutes < 0 {
		return fmt.Errorf("auto-lock minutes must not be negative, got %d", c.AutoLockMinutes)
	}
	if c.AutoLockPollInterval <= 0 {
		return fmt.Errorf("auto-lock poll interval must be positive, got %s", c.AutoLockPollInterval)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named by -c/-config in
// args (if any), then the flags in args. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
