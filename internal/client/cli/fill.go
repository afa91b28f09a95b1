package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
)

// Fill reveals an account's login and selects it for a later one-time code.
func (a *App) Fill(ctx context.Context) error {
	acc, err := a.pickAccount("Account to fill")
	if err != nil {
		return err
	}
	login, err := a.fill.RevealLogin(acc)
	if err != nil {
		return err
	}

	a.printf("Username: %s\n", login.Username)
	a.printf("Password: %s\n", login.Password)
	if acc.HasTOTPSecret() {
		a.println("Selected for one-time code; type 'stage' when the login asks for it.")
	}
	return nil
}

// OTP reveals the current code of an account. An empty answer uses the
// pending selection.
func (a *App) OTP(ctx context.Context) error {
	var (
		acc models.Account
		err error
	)
	if p, ok := a.vault.Pending(); ok {
		raw, err := getSimpleText(a.reader, "Account (number or id, empty for "+p.Nickname+")", a.out)
		if err != nil {
			return err
		}
		if raw == "" {
			acc = p
		} else if acc, err = a.resolveAccount(raw); err != nil {
			return err
		}
	} else if acc, err = a.pickAccount("Account"); err != nil {
		return err
	}

	code, ok, err := a.fill.RevealOTP(acc)
	if err != nil {
		return err
	}
	if !ok {
		a.printf("No second factor configured for %s.\n", acc.Nickname)
		return nil
	}
	a.printCode(code)
	return nil
}

// Stage signals that the login flow now asks for a one-time code. With
// auto-fill on, the pending account's code is shown once per selection.
func (a *App) Stage(ctx context.Context) error {
	code, ok, err := a.fill.OnAuthenticatorStage()
	if err != nil {
		return err
	}
	if !ok {
		a.println("Nothing to auto-fill.")
		return nil
	}
	a.printCode(code)
	return nil
}

// LoggedIn signals that the login completed and drops the pending account.
func (a *App) LoggedIn(ctx context.Context) error {
	if _, ok := a.vault.Pending(); !ok {
		return errors.New("no login in progress")
	}
	a.fill.OnLoggedIn()
	a.println("Login complete.")
	return nil
}

func (a *App) printCode(code string) {
	a.printf("Code: %s (valid for %ds)\n", code, a.fill.SecondsRemaining())
}
