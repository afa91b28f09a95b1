package vault

import "errors"

var (
	// ErrLocked is returned by operations that need an unlocked vault.
	ErrLocked = errors.New("vault is locked")
	// ErrIncorrectPassword is the only failure Unlock reports for a
	// password that does not open the verification blob. Wrong password,
	// wrong salt and corrupted verification data are indistinguishable.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrAccountNotFound is returned by Account for an unknown id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrCorruptState marks an account list that could not be parsed. It is
	// logged, never returned: unlock falls back to an empty list.
	ErrCorruptState = errors.New("persisted account list is corrupt")
	// ErrClosed is returned once Close has stopped the vault.
	ErrClosed = errors.New("vault is closed")
)
