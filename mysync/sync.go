// Package mysync provides lock-guarded values.
package mysync

import (
	"sync"
)

// Mutex guards a value of type T. Lock and RLock hand out the value together with the token that releases it.
type Mutex[T any] struct {
	mu sync.RWMutex
	v  T
}

type MutexUnlock struct {
	mu *sync.RWMutex
}

type MutexRUnlock struct {
	mu *sync.RWMutex
}

func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{v: v}
}

func (mu *Mutex[T]) Lock() (T, MutexUnlock) {
	mu.mu.Lock()
	return mu.v, MutexUnlock{&mu.mu}
}

func (mu *Mutex[T]) RLock() (T, MutexRUnlock) {
	mu.mu.RLock()
	return mu.v, MutexRUnlock{&mu.mu}
}

func (u MutexUnlock) Unlock()   { u.mu.Unlock() }
func (u MutexRUnlock) RUnlock() { u.mu.RUnlock() }

// Cache is a map that can be shared between goroutines. Values are created on first use and never evicted, which
// suits small key spaces such as font faces per size.
type Cache[K comparable, V any] struct {
	m *Mutex[map[K]V]
}

func NewCache[K comparable, V any]() Cache[K, V] {
	return Cache[K, V]{m: NewMutex(map[K]V{})}
}

// Get returns the value for k, calling fn to create it if it doesn't exist yet. fn runs with the cache locked and
// must not use the cache itself.
func (c Cache[K, V]) Get(k K, fn func() V) V {
	m, u := c.m.RLock()
	v, ok := m[k]
	u.RUnlock()
	if ok {
		return v
	}

	m, l := c.m.Lock()
	defer l.Unlock()
	// Another goroutine may have won the race for the write lock.
	if v, ok := m[k]; ok {
		return v
	}
	v = fn()
	m[k] = v
	return v
}

// Len returns the number of cached values.
func (c Cache[K, V]) Len() int {
	m, u := c.m.RLock()
	defer u.RUnlock()
	return len(m)
}
