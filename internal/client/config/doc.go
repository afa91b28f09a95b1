// Package config loads runtime configuration for the acctkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   path to the vault database
//	-otp bool   auto-fill the one-time code when the login asks for it
//	-l int      auto-lock after N minutes (0 disables)
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "data/acctkeeper.db",
//	  "auto_fill_otp": true,
//	  "auto_lock_minutes": 15,
//	  "auto_lock_poll_interval": "30s",
//	  "log_format": "console",
//	  "log_level": "info"
//	}
//
// Environment variables are not read.
package config
