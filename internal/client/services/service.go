// Package services contains application services for the acctkeeper
// client: the account editor and the credential fill port used by the
// host shell.
package services

import (
	"context"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
)

// Vault is the part of *vault.Vault the services depend on.
type Vault interface {
	IsUnlocked() bool
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
	Account(id string) (models.Account, error)
	AddAccount(ctx context.Context, a models.Account) (models.Account, error)
	UpdateAccount(ctx context.Context, a models.Account) error
	SelectPending(a models.Account) error
	Pending() (models.Account, bool)
	ClearPending()
}
