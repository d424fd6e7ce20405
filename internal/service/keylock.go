package service

import "sync"

// keyedLocks provides per-key mutual exclusion. Promo redemption is serialized
// per code and order transitions per order id; a single global lock would
// serialize unrelated entities for no reason.
type keyedLocks struct {
	mu   sync.Mutex
	held map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[string]*lockEntry)}
}

func (k *keyedLocks) Lock(key string) {
	k.mu.Lock()
	e, ok := k.held[key]
	if !ok {
		e = &lockEntry{}
		k.held[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyedLocks) Unlock(key string) {
	k.mu.Lock()
	e := k.held[key]
	e.refs--
	if e.refs == 0 {
		delete(k.held, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
