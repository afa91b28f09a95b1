// Package vault owns the lock/unlock lifecycle of the account vault.
//
// A single goroutine (the actor) holds the vault state, a sum of locked and
// unlocked. Every public method submits a transition to that goroutine and
// waits for it, so state has exactly one writer and no caller can observe
// account data while the vault is locked. The auto-lock poller posts
// expiry checks into the same queue instead of touching state itself.
package vault

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/acctkeeper/internal/clock"
	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
	"github.com/dmitrijs2005/acctkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/acctkeeper/internal/cryptox"
	"github.com/dmitrijs2005/acctkeeper/internal/logging"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Store keys.
const (
	KeySalt         = "salt"
	KeyVerification = "verification"
	KeyAccounts     = "accounts"
)

// verificationMarker is encrypted under the first password and later
// decrypted only to test candidate passwords.
const verificationMarker = "acctkeeper-verification"

// UnlockResult distinguishes first-time setup from opening an existing vault.
type UnlockResult int

const (
	// UnlockOpened means the password matched the stored verification blob.
	UnlockOpened UnlockResult = iota + 1
	// UnlockCreated means no verification blob existed; one was created
	// under this password.
	UnlockCreated
)

func (r UnlockResult) String() string {
	switch r {
	case UnlockOpened:
		return "opened"
	case UnlockCreated:
		return "created"
	default:
		return "unknown"
	}
}

// KeyDeriver turns a password and a base64 salt into a key.
type KeyDeriver func(password []byte, salt string) ([]byte, error)

// Vault is the account vault. Create it with New and stop it with Close.
type Vault struct {
	store  metadata.Store
	log    logging.Logger
	clock  clock.Clocker
	derive KeyDeriver
	newID  func() string
	onLock func(LockReason)

	reqs      chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the actor goroutine.
	st              state
	autoLockMinutes int
}

// Option customizes a Vault.
type Option func(*Vault)

func WithLogger(l logging.Logger) Option {
	return func(v *Vault) { v.log = l }
}

func WithClock(c clock.Clocker) Option {
	return func(v *Vault) { v.clock = c }
}

// WithKeyDeriver replaces cryptox.DeriveKey.
func WithKeyDeriver(d KeyDeriver) Option {
	return func(v *Vault) { v.derive = d }
}

// WithIDGenerator replaces the UUID generator used for new accounts.
func WithIDGenerator(f func() string) Option {
	return func(v *Vault) { v.newID = f }
}

// WithAutoLockMinutes sets the initial auto-lock threshold. 0 disables it.
func WithAutoLockMinutes(n int) Option {
	return func(v *Vault) { v.autoLockMinutes = max(n, 0) }
}

// WithLockListener registers f to be called after every transition from
// unlocked to locked. f runs on the actor goroutine and must not call back
// into the Vault.
func WithLockListener(f func(LockReason)) Option {
	return func(v *Vault) { v.onLock = f }
}

// New returns a locked Vault persisting through store and starts its actor.
func New(store metadata.Store, opts ...Option) *Vault {
	v := &Vault{
		store:  store,
		log:    logging.NewDiscardLogger(),
		clock:  clock.New(),
		derive: cryptox.DeriveKey,
		newID:  newAccountID,
		reqs:   make(chan func()),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		st:     locked{},
	}
	for _, o := range opts {
		o(v)
	}
	v.log = v.log.With("component", "vault")

	go v.loop()
	return v
}

func newAccountID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (v *Vault) loop() {
	defer close(v.done)
	for {
		select {
		case fn := <-v.reqs:
			fn()
		case <-v.quit:
			v.lock(context.Background(), LockShutdown)
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for it to finish.
func (v *Vault) do(fn func()) error {
	finished := make(chan struct{})
	req := func() {
		defer close(finished)
		fn()
	}

	select {
	case v.reqs <- req:
	case <-v.done:
		return ErrClosed
	}
	<-finished
	return nil
}

// post queues fn without waiting for it.
func (v *Vault) post(ctx context.Context, fn func()) bool {
	select {
	case v.reqs <- fn:
		return true
	case <-ctx.Done():
	case <-v.done:
	}
	return false
}

// session returns the unlocked state or ErrLocked. Actor goroutine only.
func (v *Vault) session() (*unlocked, error) {
	u, ok := v.st.(*unlocked)
	if !ok {
		return nil, ErrLocked
	}
	return u, nil
}

// lock transitions to locked. Actor goroutine only.
func (v *Vault) lock(ctx context.Context, reason LockReason) {
	if _, ok := v.st.(*unlocked); !ok {
		return
	}
	v.st = wipe(v.st)
	v.log.Info(ctx, "vault locked", "reason", string(reason))
	if v.onLock != nil {
		v.onLock(reason)
	}
}

// Close locks the vault, zeroing the key, and stops the actor. Later calls
// return ErrClosed.
func (v *Vault) Close() {
	v.closeOnce.Do(func() { close(v.quit) })
	<-v.done
}

// HasExistingVault reports whether a salt has been persisted, i.e. whether
// the next Unlock opens an existing vault rather than creating one.
func (v *Vault) HasExistingVault(ctx context.Context) (bool, error) {
	_, ok, err := v.store.GetString(ctx, KeySalt)
	if err != nil {
		return false, fmt.Errorf("read salt: %w", err)
	}
	return ok, nil
}

// IsUnlocked reports whether the vault currently holds a key.
func (v *Vault) IsUnlocked() bool {
	var open bool
	_ = v.do(func() {
		_, open = v.st.(*unlocked)
	})
	return open
}

// Unlock derives the key for password and opens the vault.
//
// On a fresh store it generates and persists the salt, then encrypts the
// verification marker under the derived key; that call always succeeds.
// Otherwise the key must open the stored verification blob, or Unlock
// returns ErrIncorrectPassword and the vault stays locked.
//
// Any earlier session is discarded first, so a failed Unlock always leaves
// the vault locked. Key derivation is CPU-heavy and blocks other vault
// calls while it runs.
//
// An account list that cannot be parsed is replaced by an empty list and
// logged at warn level.
func (v *Vault) Unlock(ctx context.Context, password []byte) (UnlockResult, error) {
	var (
		res UnlockResult
		err error
	)
	if derr := v.do(func() {
		v.lock(ctx, LockExplicit)
		res, err = v.unlock(ctx, password)
	}); derr != nil {
		return 0, derr
	}
	return res, err
}

func (v *Vault) unlock(ctx context.Context, password []byte) (UnlockResult, error) {
	salt, ok, err := v.store.GetString(ctx, KeySalt)
	if err != nil {
		return 0, fmt.Errorf("read salt: %w", err)
	}
	if !ok {
		if salt, err = cryptox.GenerateSalt(); err != nil {
			return 0, fmt.Errorf("generate salt: %w", err)
		}
		if err := v.store.SetString(ctx, KeySalt, salt); err != nil {
			return 0, fmt.Errorf("persist salt: %w", err)
		}
		v.log.Info(ctx, "generated vault salt")
	}

	key, err := v.derive(password, salt)
	if err != nil {
		v.log.Error(ctx, "key derivation failed", "error", err)
		return 0, fmt.Errorf("derive key: %w", err)
	}

	res, err := v.verify(ctx, key)
	if err != nil {
		wipe(&unlocked{key: key})
		return 0, err
	}

	accounts, err := v.loadAccounts(ctx)
	if err != nil {
		wipe(&unlocked{key: key})
		return 0, err
	}

	v.st = &unlocked{
		key:        key,
		unlockedAt: v.clock.Now(),
		accounts:   accounts,
	}
	v.log.Info(ctx, "vault unlocked", "result", res.String(), "accounts", len(accounts))
	return res, nil
}

// verify checks key against the stored verification blob, creating the
// blob when none exists.
func (v *Vault) verify(ctx context.Context, key []byte) (UnlockResult, error) {
	blob, ok, err := v.store.GetString(ctx, KeyVerification)
	if err != nil {
		return 0, fmt.Errorf("read verification: %w", err)
	}

	if !ok {
		blob, err := cryptox.Encrypt(key, verificationMarker)
		if err != nil {
			return 0, fmt.Errorf("encrypt verification: %w", err)
		}
		if err := v.store.SetString(ctx, KeyVerification, blob); err != nil {
			return 0, fmt.Errorf("persist verification: %w", err)
		}
		v.log.Info(ctx, "created new vault")
		return UnlockCreated, nil
	}

	if err := cryptox.Check(key, blob); err != nil {
		v.log.Warn(ctx, "unlock rejected")
		v.log.Debug(ctx, "verification failed", "error", err)
		return 0, ErrIncorrectPassword
	}
	return UnlockOpened, nil
}

// loadAccounts reads the persisted list. Store failures are returned; parse
// failures degrade to an empty list.
func (v *Vault) loadAccounts(ctx context.Context) ([]models.Account, error) {
	blob, ok, err := v.store.GetString(ctx, KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if !ok {
		return []models.Account{}, nil
	}

	accounts, err := models.DecodeAccounts(blob)
	if err != nil {
		v.log.Warn(ctx, "discarding unreadable account list", "error", fmt.Errorf("%w: %w", ErrCorruptState, err))
		return []models.Account{}, nil
	}
	return accounts, nil
}

// Lock discards the key, the account list and any pending selection.
// Locking a locked vault does nothing.
func (v *Vault) Lock() {
	_ = v.do(func() { v.lock(context.Background(), LockExplicit) })
}

// SetAutoLockMinutes changes the auto-lock threshold. The new value is used
// from the next poll. 0 or less disables auto-lock.
func (v *Vault) SetAutoLockMinutes(n int) {
	_ = v.do(func() { v.autoLockMinutes = max(n, 0) })
}

// Accounts returns a copy of the account list.
func (v *Vault) Accounts() ([]models.Account, error) {
	var (
		out []models.Account
		err error
	)
	if derr := v.do(func() {
		var u *unlocked
		if u, err = v.session(); err == nil {
			out = slices.Clone(u.accounts)
		}
	}); derr != nil {
		return nil, derr
	}
	return out, err
}

// Account returns the first account with the given id.
func (v *Vault) Account(id string) (models.Account, error) {
	var (
		out models.Account
		err error
	)
	if derr := v.do(func() {
		var u *unlocked
		if u, err = v.session(); err != nil {
			return
		}
		a, found := lo.Find(u.accounts, func(a models.Account) bool { return a.ID == id })
		if !found {
			err = ErrAccountNotFound
			return
		}
		out = a
	}); derr != nil {
		return models.Account{}, derr
	}
	return out, err
}

// mutate computes a new account list and pending selection with change,
// persists the list in full, and only then commits both. A failed write
// leaves the session untouched.
func (v *Vault) mutate(ctx context.Context, change func(u *unlocked) ([]models.Account, *models.Account)) error {
	var err error
	if derr := v.do(func() {
		var u *unlocked
		if u, err = v.session(); err != nil {
			return
		}
		next, pending := change(u)

		var blob string
		if blob, err = models.EncodeAccounts(next); err != nil {
			return
		}
		if err = v.store.SetString(ctx, KeyAccounts, blob); err != nil {
			err = fmt.Errorf("persist accounts: %w", err)
			v.log.Error(ctx, "failed to save accounts", "error", err)
			return
		}
		u.accounts = next
		u.pending = pending
	}); derr != nil {
		return derr
	}
	return err
}

// AddAccount appends a, generating an id when a.ID is empty, and persists
// the whole list. It returns the stored account.
func (v *Vault) AddAccount(ctx context.Context, a models.Account) (models.Account, error) {
	err := v.mutate(ctx, func(u *unlocked) ([]models.Account, *models.Account) {
		if a.ID == "" {
			a.ID = v.newID()
		}
		return append(slices.Clone(u.accounts), a), u.pending
	})
	if err != nil {
		return models.Account{}, err
	}
	v.log.Info(ctx, "account added", "account", a)
	return a, nil
}

// UpdateAccount replaces the first account whose id matches a.ID and
// persists the whole list. An unknown id changes nothing but the list is
// still written.
func (v *Vault) UpdateAccount(ctx context.Context, a models.Account) error {
	err := v.mutate(ctx, func(u *unlocked) ([]models.Account, *models.Account) {
		next := slices.Clone(u.accounts)
		if _, i, found := lo.FindIndexOf(next, func(x models.Account) bool { return x.ID == a.ID }); found {
			next[i] = a
		}
		pending := u.pending
		if pending != nil && pending.ID == a.ID {
			p := a
			pending = &p
		}
		return next, pending
	})
	if err != nil {
		return err
	}
	v.log.Info(ctx, "account updated", "account", a)
	return nil
}

// DeleteAccount removes every account with the given id and persists the
// whole list.
func (v *Vault) DeleteAccount(ctx context.Context, id string) error {
	err := v.mutate(ctx, func(u *unlocked) ([]models.Account, *models.Account) {
		pending := u.pending
		if pending != nil && pending.ID == id {
			pending = nil
		}
		return lo.Reject(u.accounts, func(x models.Account, _ int) bool { return x.ID == id }), pending
	})
	if err != nil {
		return err
	}
	v.log.Info(ctx, "account deleted", "id", id)
	return nil
}

// Encrypt seals plaintext under the current key.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	return v.withKey(func(key []byte) (string, error) {
		return cryptox.Encrypt(key, plaintext)
	})
}

// Decrypt opens blob under the current key. cryptox errors are returned
// as-is so the caller can tell a bad blob from a locked vault.
func (v *Vault) Decrypt(blob string) (string, error) {
	return v.withKey(func(key []byte) (string, error) {
		return cryptox.Decrypt(key, blob)
	})
}

func (v *Vault) withKey(fn func(key []byte) (string, error)) (string, error) {
	var (
		out string
		err error
	)
	if derr := v.do(func() {
		var u *unlocked
		if u, err = v.session(); err == nil {
			out, err = fn(u.key)
		}
	}); derr != nil {
		return "", derr
	}
	return out, err
}

// SelectPending records a as the account awaiting a one-time code. It
// replaces any earlier selection.
func (v *Vault) SelectPending(a models.Account) error {
	var err error
	if derr := v.do(func() {
		var u *unlocked
		if u, err = v.session(); err == nil {
			u.pending = &a
		}
	}); derr != nil {
		return derr
	}
	return err
}

// Pending returns the selected account, if any.
func (v *Vault) Pending() (models.Account, bool) {
	var (
		out models.Account
		ok  bool
	)
	_ = v.do(func() {
		if u, err := v.session(); err == nil && u.pending != nil {
			out, ok = *u.pending, true
		}
	})
	return out, ok
}

// ClearPending drops the pending selection.
func (v *Vault) ClearPending() {
	_ = v.do(func() {
		if u, err := v.session(); err == nil {
			u.pending = nil
		}
	})
}
