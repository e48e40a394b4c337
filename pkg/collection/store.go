// Package collection provides the generic containers the framework's
// registries and caches are built on: an insertion-ordered key/value store
// and a fixed-capacity LRU cache layered on top of it.
package collection

// Pair is a key/value tuple used for construction from existing data.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Store is an insertion-ordered key→value container. Keys keep the order
// they were first inserted in; updating an existing key does not move it.
// Store is not safe for concurrent use; owners that share one across
// goroutines guard it themselves.
type Store[K comparable, V any] struct {
	items map[K]V
	order []K
}

// NewStore returns a store seeded with the given pairs, in order.
func NewStore[K comparable, V any](pairs ...Pair[K, V]) *Store[K, V] {
	s := &Store[K, V]{items: make(map[K]V, len(pairs))}
	for _, p := range pairs {
		s.Set(p.Key, p.Value)
	}
	return s
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	return len(s.items)
}

// Has reports whether key is present.
func (s *Store[K, V]) Has(key K) bool {
	_, ok := s.items[key]
	return ok
}

// Get returns the value for key and whether it was present.
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.items[key]
	return v, ok
}

// Set inserts or replaces the value for key and returns the store.
func (s *Store[K, V]) Set(key K, value V) *Store[K, V] {
	if _, ok := s.items[key]; !ok {
		s.order = append(s.order, key)
	}
	s.items[key] = value
	return s
}

// Delete removes key, reporting whether it was present.
func (s *Store[K, V]) Delete(key K) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (s *Store[K, V]) Keys() []K {
	out := make([]K, len(s.order))
	copy(out, s.order)
	return out
}

// Values returns the values in insertion order.
func (s *Store[K, V]) Values() []V {
	out := make([]V, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

// ForEach calls fn for every entry in insertion order.
func (s *Store[K, V]) ForEach(fn func(key K, value V)) {
	for _, k := range s.order {
		fn(k, s.items[k])
	}
}

// Find returns the first value (in insertion order) for which fn is true.
func (s *Store[K, V]) Find(fn func(key K, value V) bool) (V, bool) {
	for _, k := range s.order {
		if fn(k, s.items[k]) {
			return s.items[k], true
		}
	}
	var zero V
	return zero, false
}

// Filter returns a new store holding only the entries for which fn is true.
func (s *Store[K, V]) Filter(fn func(key K, value V) bool) *Store[K, V] {
	out := NewStore[K, V]()
	for _, k := range s.order {
		if fn(k, s.items[k]) {
			out.Set(k, s.items[k])
		}
	}
	return out
}

// Map returns a new store with every value transformed by fn.
func (s *Store[K, V]) Map(fn func(key K, value V) V) *Store[K, V] {
	out := NewStore[K, V]()
	for _, k := range s.order {
		out.Set(k, fn(k, s.items[k]))
	}
	return out
}

// Every reports whether fn is true for all entries.
func (s *Store[K, V]) Every(fn func(key K, value V) bool) bool {
	for _, k := range s.order {
		if !fn(k, s.items[k]) {
			return false
		}
	}
	return true
}

// Some reports whether fn is true for at least one entry.
func (s *Store[K, V]) Some(fn func(key K, value V) bool) bool {
	for _, k := range s.order {
		if fn(k, s.items[k]) {
			return true
		}
	}
	return false
}

// Reduce folds the entries in insertion order into a single value.
func Reduce[K comparable, V, A any](s *Store[K, V], initial A, fn func(acc A, key K, value V) A) A {
	acc := initial
	for _, k := range s.order {
		acc = fn(acc, k, s.items[k])
	}
	return acc
}
