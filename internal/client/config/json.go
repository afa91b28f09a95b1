package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/acctkeeper/internal/flagx"
	"github.com/dmitrijs2005/acctkeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent keys leave the current
// value alone, so pointer fields distinguish "false"/"0" from missing.
type JsonConfig struct {
	DatabasePath         string         `json:"database_path"`
	AutoFillOTP          *bool          `json:"auto_fill_otp"`
	AutoLockMinutes      *int           `json:"auto_lock_minutes"`
	AutoLockPollInterval timex.Duration `json:"auto_lock_poll_interval"`
	LogFormat            string         `json:"log_format"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config in args. With
// neither flag present it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigFlags(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc JsonConfig) apply(cfg *Config) {
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.AutoFillOTP != nil {
		cfg.AutoFillOTP = *jc.AutoFillOTP
	}
	if jc.AutoLockMinutes != nil {
		cfg.AutoLockMinutes = *jc.AutoLockMinutes
	}
	if jc.AutoLockPollInterval.Duration != 0 {
		cfg.AutoLockPollInterval = jc.AutoLockPollInterval.Duration
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
