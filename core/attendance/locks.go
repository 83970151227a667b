package attendance

import "sync"

// keyedMutex serializes appends per (date, section, member) key so a user
// toggle and the auto-absence sweep cannot interleave on the same key.
// Entries are reference counted and dropped once released.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

// lock acquires the key's mutex and returns its release func.
func (km *keyedMutex) lock(key string) func() {
	km.mu.Lock()
	kl, ok := km.locks[key]
	if !ok {
		kl = &keyLock{}
		km.locks[key] = kl
	}
	kl.refs++
	km.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		km.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(km.locks, key)
		}
		km.mu.Unlock()
	}
}
