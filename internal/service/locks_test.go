package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLocksStripeIsStable(t *testing.T) {
	locks := newKeyLocks(8)

	assert.Same(t, locks.stripe("a1", "BTC"), locks.stripe("a1", "BTC"))
	assert.Len(t, locks.stripes, 8)
}

func TestKeyLocksDefaultSize(t *testing.T) {
	assert.Len(t, newKeyLocks(0).stripes, defaultLockStripes)
	assert.Len(t, newKeyLocks(-3).stripes, defaultLockStripes)
}

func TestKeyLocksUnlock(t *testing.T) {
	locks := newKeyLocks(2)

	unlock := locks.lock("a1", "BTC")
	unlock()
	// re-acquiring must not deadlock
	unlock = locks.lock("a1", "BTC")
	unlock()
}
