// Package keymutex provides named mutual exclusion: one lock per string key,
// created on demand and released when the last holder lets go.
package keymutex

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes work per key. Locks for distinct keys are independent.
// The zero value is not usable; call New.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock blocks until the key's lock is held.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// TryLock acquires the key's lock without blocking. Reports whether the lock
// was taken; a false return means another holder is active and the caller
// must not proceed.
func (k *KeyedMutex) TryLock(key string) bool {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	if entry.mu.TryLock() {
		return true
	}

	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	return false
}

// Unlock releases the key's lock. The entry is removed once no goroutine
// holds or waits on it.
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("keymutex: unlock of unheld key " + key)
	}
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
