package service

import (
	"hash/fnv"
	"sync"
)

const defaultLockStripes = 64

// keyLocks serializes work per position key over a fixed set of mutex stripes.
// Two keys may share a stripe; one key always maps to the same stripe.
type keyLocks struct {
	stripes []sync.Mutex
}

func newKeyLocks(n int) *keyLocks {
	if n <= 0 {
		n = defaultLockStripes
	}
	return &keyLocks{stripes: make([]sync.Mutex, n)}
}

func (l *keyLocks) stripe(accountID, assetID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(accountID))
	h.Write([]byte{'|'})
	h.Write([]byte(assetID))
	return &l.stripes[h.Sum32()%uint32(len(l.stripes))]
}

// lock acquires the stripe for the key and returns its release func.
func (l *keyLocks) lock(accountID, assetID string) func() {
	mu := l.stripe(accountID, assetID)
	mu.Lock()
	return mu.Unlock
}
