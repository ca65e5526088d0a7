package service

import "sync"

// tenantLocks serializes mutations per organization and resource kind so
// that count-then-insert limit checks cannot race past a plan ceiling.
type tenantLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTenantLocks() *tenantLocks {
	return &tenantLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the (organization, resource) pair and returns the unlock
// function. Entries are never evicted; the key space is bounded by the
// number of organizations times resource kinds.
func (t *tenantLocks) Acquire(orgID, resource string) func() {
	key := orgID + ":" + resource
	t.mu.Lock()
	lock, ok := t.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[key] = lock
	}
	t.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
