package mem

import (
	"sync"
	"time"
)

// Store is a small in-process cache with per-entry expiry.
type Store[K comparable, V any] interface {
	Set(key K, value V, ttl time.Duration)

	// Get returns the value for key if present and not expired.
	Get(key K) (V, bool)

	Delete(key K)

	// Purge drops every entry, expired or not.
	Purge()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type TTLCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	now  func() time.Time
}

func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]entry[V]),
		now:  time.Now,
	}
}

func (s *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

func (s *TTLCache[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		s.Delete(key) // cleanup expired
		var zero V
		return zero, false
	}
	return e.value, true
}

func (s *TTLCache[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *TTLCache[K, V]) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[K]entry[V])
}
