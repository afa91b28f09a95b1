package vault

import (
	"context"
	"time"
)

// DefaultPollInterval is how often RunAutoLock checks for expiry. Actual
// lock time may lag the threshold by up to one interval.
const DefaultPollInterval = 30 * time.Second

// RunAutoLock posts an expiry check to the vault every period until ctx is
// cancelled or the vault is closed. It blocks; run it in its own goroutine.
func (v *Vault) RunAutoLock(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = DefaultPollInterval
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !v.post(ctx, v.checkExpiry) {
				return
			}
		case <-ctx.Done():
			return
		case <-v.done:
			return
		}
	}
}

// checkExpiry locks an unlocked vault whose session reached the threshold.
// Actor goroutine only.
func (v *Vault) checkExpiry() {
	u, err := v.session()
	if err != nil {
		return
	}
	now := v.clock.Now()
	if !u.expired(now, v.autoLockMinutes) {
		return
	}
	v.log.Info(context.Background(), "auto-locking vault",
		"elapsed_minutes", int(now.Sub(u.unlockedAt)/time.Minute))
	v.lock(context.Background(), LockAutomatic)
}
