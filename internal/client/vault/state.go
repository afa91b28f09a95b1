package vault

import (
	"time"

	"github.com/dmitrijs2005/acctkeeper/internal/client/models"
	"github.com/dmitrijs2005/acctkeeper/internal/common"
)

// state is either locked or *unlocked. Only the actor goroutine holds it.
type state interface {
	isState()
}

type locked struct{}

func (locked) isState() {}

type unlocked struct {
	key        []byte
	unlockedAt time.Time
	accounts   []models.Account
	// pending is the account last selected for a login fill, if any.
	pending *models.Account
}

func (*unlocked) isState() {}

// LockReason says why the vault transitioned to locked.
type LockReason string

const (
	LockExplicit  LockReason = "explicit"
	LockAutomatic LockReason = "auto"
	LockShutdown  LockReason = "shutdown"
)

// wipe clears every secret held by st and returns the locked state.
func wipe(st state) state {
	u, ok := st.(*unlocked)
	if !ok {
		return locked{}
	}
	common.WipeByteArray(u.key)
	u.key = nil
	clear(u.accounts)
	u.accounts = nil
	u.pending = nil
	return locked{}
}

// expired reports whether an unlocked session has reached the auto-lock
// threshold. Elapsed time is counted in whole minutes.
func (u *unlocked) expired(now time.Time, minutes int) bool {
	if minutes <= 0 {
		return false
	}
	return int(now.Sub(u.unlockedAt)/time.Minute) >= minutes
}
