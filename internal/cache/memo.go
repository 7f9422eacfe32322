package cache

import "golang.org/x/sync/singleflight"

// Memo memoizes the result of a computation per key. Concurrent callers of
// the same missing key share one computation. Failed computations are not
// stored.
type Memo[T any] struct {
	store *LRUCache[T]
	group singleflight.Group
}

// NewMemo creates a memo holding at most maxSize results without expiry.
func NewMemo[T any](maxSize int) *Memo[T] {
	return &Memo[T]{store: NewLRUCache[T](maxSize, 0)}
}

// Get returns the memoized value for key, computing it with fn on a miss.
func (m *Memo[T]) Get(key string, fn func() (T, error)) (T, error) {
	if v, ok := m.store.Get(key); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.store.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return v, err
		}
		m.store.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Forget drops every memoized value.
func (m *Memo[T]) Forget() {
	m.store.Purge()
}

// Size returns the number of memoized values.
func (m *Memo[T]) Size() int {
	return m.store.Size()
}
