package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/acctkeeper/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns:
//
//	-d string   path to the vault database
//	-otp bool   auto-fill the one-time code
//	-l int      auto-lock after N minutes, 0 disables
//
// Other arguments in args are ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-l"}, "-otp")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the vault database")
	fs.BoolVar(&cfg.AutoFillOTP, "otp", cfg.AutoFillOTP, "auto-fill the one-time code")
	fs.IntVar(&cfg.AutoLockMinutes, "l", cfg.AutoLockMinutes, "auto-lock after N minutes (0 disables)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
