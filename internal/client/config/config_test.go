package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, filepath.Join("data", "acctkeeper.db"), c.DatabasePath)
	assert.True(t, c.AutoFillOTP)
	assert.Equal(t, 0, c.AutoLockMinutes)
	assert.Equal(t, 30*time.Second, c.AutoLockPollInterval)
	assert.Equal(t, "console", c.LogFormat)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"database_path":     "/from/json.db",
		"auto_lock_minutes": 30,
		"log_level":         "debug",
	})

	cfg, err := LoadConfig([]string{"-c", path, "-l", "5"})
	require.NoError(t, err)

	assert.Equal(t, "/from/json.db", cfg.DatabasePath)
	assert.Equal(t, 5, cfg.AutoLockMinutes)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative auto-lock", []string{"-l", "-3"}},
		{"non-numeric auto-lock", []string{"-l", "soon"}},
		{"missing json file", []string{"-c", filepath.Join(t.TempDir(), "absent.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args)
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, false},
		{"negative minutes", func(c *Config) { c.AutoLockMinutes = -1 }, false},
		{"zero poll interval", func(c *Config) { c.AutoLockPollInterval = 0 }, false},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"json log format", func(c *Config) { c.LogFormat = "json" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}
