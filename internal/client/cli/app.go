package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/acctkeeper/internal/client/config"
	"github.com/dmitrijs2005/acctkeeper/internal/client/services"
	"github.com/dmitrijs2005/acctkeeper/internal/client/vault"
	"github.com/dmitrijs2005/acctkeeper/internal/logging"
	"github.com/dmitrijs2005/acctkeeper/internal/totp"
)

type App struct {
	config   *config.Config
	vault    *vault.Vault
	accounts *services.AccountService
	fill     *services.FillPort
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	autoLockMinutes int
	autoFill        bool
}

// NewApp wires the services around v. The vault stays owned by the App and
// is closed when Run returns.
func NewApp(c *config.Config, v *vault.Vault, log logging.Logger) (*App, error) {
	accounts, err := services.NewAccountService(v)
	if err != nil {
		return nil, fmt.Errorf("init account service: %w", err)
	}

	return &App{
		config:          c,
		vault:           v,
		accounts:        accounts,
		fill:            services.NewFillPort(v, totp.NewGenerator(nil), c.AutoFillOTP),
		log:             log,
		reader:          bufio.NewReader(os.Stdin),
		out:             os.Stdout,
		autoLockMinutes: c.AutoLockMinutes,
		autoFill:        c.AutoFillOTP,
	}, nil
}

// Run starts the auto-lock poller and the REPL, and blocks until the user
// exits or input ends. The vault is locked and closed on return.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.vault.Close()

	go a.vault.RunAutoLock(ctx, a.config.AutoLockPollInterval)

	a.println("Welcome to acctkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isUnlocked() bool {
	return a.vault.IsUnlocked()
}

func (a *App) getStatus() string {
	if a.isUnlocked() {
		return "(unlocked)"
	}
	return "(locked)"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// LockNotifier returns a vault lock listener that tells the user when the
// vault locked without them asking.
func LockNotifier(w io.Writer) func(vault.LockReason) {
	return func(r vault.LockReason) {
		if r == vault.LockAutomatic {
			fmt.Fprintln(w, "\nVault locked after inactivity.")
		}
	}
}
