package services

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
	"github.com/dmitrijs2005/acctkeeper/internal/client/vault"
	"github.com/dmitrijs2005/acctkeeper/internal/totp"
)

// Login is a decrypted username and password pair.
type Login struct {
	Username string
	Password string
}

// FillPort hands out decrypted credentials for one account at a time. It
// performs no delivery; the caller decides where the values go.
type FillPort struct {
	vault Vault
	otp   *totp.Generator

	mu       sync.Mutex
	autoFill bool
	// selection counts RevealLogin calls; attempted is the selection the
	// last automatic OTP reveal ran for.
	selection uint64
	attempted uint64
}

// NewFillPort returns a FillPort reading from v. When autoFill is set,
// OnAuthenticatorStage reveals the pending account's code once per
// selection.
func NewFillPort(v Vault, gen *totp.Generator, autoFill bool) *FillPort {
	if gen == nil {
		gen = totp.NewGenerator(nil)
	}
	return &FillPort{vault: v, otp: gen, autoFill: autoFill}
}

// SetAutoFill changes the auto-fill preference.
func (p *FillPort) SetAutoFill(on bool) {
	p.mu.Lock()
	p.autoFill = on
	p.mu.Unlock()
}

// RevealLogin decrypts both login fields of a and records a as the account
// awaiting a one-time code.
func (p *FillPort) RevealLogin(a models.Account) (Login, error) {
	username, err := p.vault.Decrypt(a.EncryptedUsername)
	if err != nil {
		return Login{}, fmt.Errorf("decrypt username: %w", err)
	}
	password, err := p.vault.Decrypt(a.EncryptedPassword)
	if err != nil {
		return Login{}, fmt.Errorf("decrypt password: %w", err)
	}
	if err := p.vault.SelectPending(a); err != nil {
		return Login{}, err
	}

	p.mu.Lock()
	p.selection++
	p.mu.Unlock()

	return Login{Username: username, Password: password}, nil
}

// RevealOTP returns the current code for a. ok is false, with a nil error,
// when a has no second factor configured.
func (p *FillPort) RevealOTP(a models.Account) (code string, ok bool, err error) {
	if !p.vault.IsUnlocked() {
		return "", false, vault.ErrLocked
	}
	if !a.HasTOTPSecret() {
		return "", false, nil
	}

	secret, err := p.vault.Decrypt(a.EncryptedTOTPSecret)
	if err != nil {
		return "", false, fmt.Errorf("decrypt totp secret: %w", err)
	}
	code, err = p.otp.GenerateCode(secret)
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

// OnAuthenticatorStage is called when the login flow reaches the one-time
// code prompt. With auto-fill on and an account pending, the first call per
// selection reveals that account's code; every other call returns ok false.
func (p *FillPort) OnAuthenticatorStage() (code string, ok bool, err error) {
	p.mu.Lock()
	if !p.autoFill || p.attempted == p.selection {
		p.mu.Unlock()
		return "", false, nil
	}
	p.attempted = p.selection
	p.mu.Unlock()

	pending, found := p.vault.Pending()
	if !found {
		return "", false, nil
	}
	return p.RevealOTP(pending)
}

// OnLoggedIn is called once the login completed; it drops the pending
// account.
func (p *FillPort) OnLoggedIn() {
	p.vault.ClearPending()
}

// SecondsRemaining returns how long the current code stays valid.
func (p *FillPort) SecondsRemaining() int {
	return p.otp.SecondsRemaining()
}
