package collection

// lruNode is one entry of the access-order list. The list uses a single
// sentinel whose next is the most recently used node and whose prev is the
// least recently used one.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	next  *lruNode[K, V]
	prev  *lruNode[K, V]
}

// LRU is a fixed-capacity cache with O(1) get/set/delete. A doubly-linked
// access-order list is layered over the key map; inserting past capacity
// evicts the least recently used entry. Not safe for concurrent use.
type LRU[K comparable, V any] struct {
	capacity int
	items    map[K]*lruNode[K, V]
	root     *lruNode[K, V] // sentinel
}

// NewLRU returns a cache holding at most capacity entries, seeded with the
// given pairs (later pairs are more recently used). Capacity is clamped to
// at least one.
func NewLRU[K comparable, V any](capacity int, pairs ...Pair[K, V]) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	root := &lruNode[K, V]{}
	root.next = root
	root.prev = root
	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*lruNode[K, V], capacity),
		root:     root,
	}
	for _, p := range pairs {
		c.Set(p.Key, p.Value)
	}
	return c
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return len(c.items)
}

// Capacity returns the configured maximum size.
func (c *LRU[K, V]) Capacity() int {
	return c.capacity
}

// Has reports whether key is cached, without promoting it.
func (c *LRU[K, V]) Has(key K) bool {
	_, ok := c.items[key]
	return ok
}

// Get returns the value for key and promotes it to most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.unlink(n)
	c.pushFront(n)
	return n.value, true
}

// Peek returns the value for key without touching the access order.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	n, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Set inserts or replaces the value for key at the most-recently-used
// position, evicting the least recently used entry if the cache is over
// capacity. Returns the cache for chaining.
func (c *LRU[K, V]) Set(key K, value V) *LRU[K, V] {
	if n, ok := c.items[key]; ok {
		n.value = value
		c.unlink(n)
		c.pushFront(n)
	} else {
		n = &lruNode[K, V]{key: key, value: value}
		c.items[key] = n
		c.pushFront(n)
	}
	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	return c
}

// Delete removes key, reporting whether it was present. Deleting an absent
// key is a no-op; no list pointers are touched.
func (c *LRU[K, V]) Delete(key K) bool {
	n, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.items, key)
	return true
}

// Keys returns the cached keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	out := make([]K, 0, len(c.items))
	for n := c.root.next; n != c.root; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// ForEach calls fn for every entry in unspecified order, without promoting.
func (c *LRU[K, V]) ForEach(fn func(key K, value V)) {
	for k, n := range c.items {
		fn(k, n.value)
	}
}

func (c *LRU[K, V]) evictOldest() {
	tail := c.root.prev
	if tail == c.root {
		return
	}
	c.unlink(tail)
	delete(c.items, tail.key)
}

func (c *LRU[K, V]) pushFront(n *lruNode[K, V]) {
	n.prev = c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *LRU[K, V]) unlink(n *lruNode[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
}
