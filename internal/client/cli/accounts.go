package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
	"github.com/dmitrijs2005/acctkeeper/internal/client/services"
	"github.com/dmitrijs2005/acctkeeper/internal/common"
	"github.com/dmitrijs2005/acctkeeper/internal/totp"
)

// clearSecret is typed at the edit prompt to remove a second factor.
const clearSecret = "-"

// List prints the accounts in stored order, numbered from 1.
func (a *App) List(ctx context.Context) error {
	accounts, err := a.vault.Accounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		a.println("No accounts.")
		return nil
	}
	for i, acc := range accounts {
		a.println(formatAccount(i+1, acc))
	}
	return nil
}

func formatAccount(n int, acc models.Account) string {
	mark := ""
	if acc.HasTOTPSecret() {
		mark = " [2FA]"
	}
	return fmt.Sprintf("%d. %s%s  (%s)", n, acc.Nickname, mark, acc.ID)
}

// pickAccount prompts for a list number or id.
func (a *App) pickAccount(prompt string) (models.Account, error) {
	raw, err := getSimpleText(a.reader, prompt+" (number or id)", a.out)
	if err != nil {
		return models.Account{}, err
	}
	return a.resolveAccount(raw)
}

// resolveAccount accepts a 1-based position in the list or an account id.
func (a *App) resolveAccount(raw string) (models.Account, error) {
	if raw == "" {
		return models.Account{}, errors.New("no account given")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		accounts, err := a.vault.Accounts()
		if err != nil {
			return models.Account{}, err
		}
		if n < 1 || n > len(accounts) {
			return models.Account{}, fmt.Errorf("no account number %d", n)
		}
		return accounts[n-1], nil
	}
	return a.vault.Account(raw)
}

func (a *App) reportSaveError(err error) error {
	var ve services.ValidationError
	switch {
	case errors.As(err, &ve):
		for _, msg := range ve {
			a.println(" -", msg)
		}
		return services.ErrValidation
	case errors.Is(err, totp.ErrInvalidSecret):
		a.println("Second-factor secret rejected:", err)
		return totp.ErrInvalidSecret
	default:
		return err
	}
}

// Add prompts for a new account and saves it.
func (a *App) Add(ctx context.Context) error {
	in := services.AccountInput{}
	var err error

	if in.Nickname, err = getSimpleText(a.reader, "Nickname", a.out); err != nil {
		return err
	}
	if in.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Account password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	in.Password = string(password)
	if in.TOTPSecret, err = getSimpleText(a.reader, "Second-factor secret (base32, empty for none)", a.out); err != nil {
		return err
	}

	acc, err := a.accounts.Save(ctx, in)
	if err != nil {
		return a.reportSaveError(err)
	}
	a.printf("Saved %s (%s)\n", acc.Nickname, acc.ID)
	return nil
}

// Edit shows the current values of an account and saves the changes. An
// empty answer keeps the current value.
func (a *App) Edit(ctx context.Context) error {
	acc, err := a.pickAccount("Account to edit")
	if err != nil {
		return err
	}
	in, err := a.accounts.Reveal(acc.ID)
	if err != nil {
		return err
	}

	keep := func(prompt, current string) (string, error) {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", prompt, current), a.out)
		if err != nil || v == "" {
			return current, err
		}
		return v, nil
	}

	if in.Nickname, err = keep("Nickname", in.Nickname); err != nil {
		return err
	}
	if in.Username, err = keep("Username", in.Username); err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Account password (empty keeps current): ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) > 0 {
		in.Password = string(password)
	}

	secretPrompt := "Second-factor secret (empty keeps none)"
	if in.TOTPSecret != "" {
		secretPrompt = fmt.Sprintf("Second-factor secret (empty keeps current, %q removes)", clearSecret)
	}
	secret, err := getSimpleText(a.reader, secretPrompt, a.out)
	if err != nil {
		return err
	}
	switch secret {
	case "":
	case clearSecret:
		in.TOTPSecret = ""
	default:
		in.TOTPSecret = secret
	}

	saved, err := a.accounts.Save(ctx, in)
	if err != nil {
		return a.reportSaveError(err)
	}
	a.printf("Updated %s\n", saved.Nickname)
	return nil
}

// Delete removes an account after confirmation.
func (a *App) Delete(ctx context.Context) error {
	acc, err := a.pickAccount("Account to delete")
	if err != nil {
		return err
	}
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete %s? (y/N)", acc.Nickname), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return nil
	}

	if err := a.vault.DeleteAccount(ctx, acc.ID); err != nil {
		return err
	}
	a.printf("Deleted %s\n", acc.Nickname)
	return nil
}
