package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/acctkeeper/internal/client/vault"
	"github.com/dmitrijs2005/acctkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// MinPasswordLength applies when a new vault is created.
const MinPasswordLength = 4

var (
	ErrEmptyPassword    = errors.New("password is empty")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// checkNewPassword guards first-time setup.
func checkNewPassword(password, confirm []byte) error {
	if len(password) == 0 {
		return ErrEmptyPassword
	}
	if len([]rune(string(password))) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if string(password) != string(confirm) {
		return ErrPasswordMismatch
	}
	return nil
}

// Unlock asks for the master password and opens the vault. On first use the
// password is asked twice and a new vault is created.
func (a *App) Unlock(ctx context.Context) error {
	exists, err := a.vault.HasExistingVault(ctx)
	if err != nil {
		return err
	}

	var password []byte
	if exists {
		if password, err = getPassword(a.reader, "Master password: ", a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(password)
		if len(password) == 0 {
			return ErrEmptyPassword
		}
	} else {
		a.println("No vault found, creating a new one.")
		if password, err = getPassword(a.reader, "Choose master password: ", a.out); err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		confirm, err := getPassword(a.reader, "Confirm master password: ", a.out)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)

		if err := checkNewPassword(password, confirm); err != nil {
			return err
		}
	}

	res, err := a.vault.Unlock(ctx, password)
	if err != nil {
		if errors.Is(err, vault.ErrIncorrectPassword) {
			a.println("Incorrect password.")
			return nil
		}
		return err
	}

	switch res {
	case vault.UnlockCreated:
		a.println("Vault created and unlocked.")
	default:
		a.println("Vault unlocked.")
	}
	return nil
}

// Lock locks the vault.
func (a *App) Lock(ctx context.Context) error {
	a.vault.Lock()
	a.println("Vault locked.")
	return nil
}

// Status prints the lock state and, when unlocked, the account count and
// pending selection.
func (a *App) Status(ctx context.Context) error {
	if !a.vault.IsUnlocked() {
		a.println("Vault: locked")
	} else {
		accounts, err := a.vault.Accounts()
		if err != nil {
			return err
		}
		a.println("Vault: unlocked")
		a.printf("Accounts: %d\n", len(accounts))
		if p, ok := a.vault.Pending(); ok {
			a.printf("Pending: %s\n", p.Nickname)
		}
	}

	if a.autoLockMinutes > 0 {
		a.printf("Auto-lock: after %d min\n", a.autoLockMinutes)
	} else {
		a.println("Auto-lock: off")
	}
	a.printf("Auto-fill OTP: %s\n", onOff(a.autoFill))
	return nil
}

// AutoLock changes the auto-lock threshold for this session.
func (a *App) AutoLock(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, fmt.Sprintf("Auto-lock after minutes (0 disables) [%d]", a.autoLockMinutes), a.out)
	if err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fmt.Errorf("not a non-negative number: %q", raw)
	}

	a.vault.SetAutoLockMinutes(n)
	a.autoLockMinutes = n
	a.log.Info(ctx, "auto-lock threshold changed", "minutes", n)
	return nil
}

// AutoFill toggles one-time code auto-fill for this session.
func (a *App) AutoFill(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, fmt.Sprintf("Auto-fill one-time codes, on or off [%s]", onOff(a.autoFill)), a.out)
	if err != nil {
		return err
	}
	switch strings.ToLower(raw) {
	case "":
		return nil
	case "on", "yes", "y", "true":
		a.autoFill = true
	case "off", "no", "n", "false":
		a.autoFill = false
	default:
		return fmt.Errorf("expected on or off, got %q", raw)
	}
	a.fill.SetAutoFill(a.autoFill)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
