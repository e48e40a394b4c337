package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/pkg/collection"
)

// ErrDuplicateLabel is returned when registering a label that is already
// taken in a registry.
var ErrDuplicateLabel = errors.New("core: duplicate label")

// Registry is a case-normalized label→value registry. Labels are folded to
// lower case before insertion and lookup. Safe for concurrent use; in
// practice registries are populated at startup and read thereafter.
type Registry[T any] struct {
	mu    sync.RWMutex
	name  string
	log   zerolog.Logger
	items *collection.Store[string, T]
}

// NewRegistry returns an empty registry. name tags log lines.
func NewRegistry[T any](name string, log zerolog.Logger) *Registry[T] {
	return &Registry[T]{
		name:  name,
		log:   log.With().Str("registry", name).Logger(),
		items: collection.NewStore[string, T](),
	}
}

// Add registers value under label, rejecting duplicates.
func (r *Registry[T]) Add(label string, value T) error {
	key := normalize(label)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items.Has(key) {
		return fmt.Errorf("%w: %s %q", ErrDuplicateLabel, r.name, label)
	}
	r.items.Set(key, value)
	r.log.Debug().Str("label", key).Msg("registered")
	return nil
}

// Remove unregisters label, reporting whether it was present.
func (r *Registry[T]) Remove(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items.Delete(normalize(label))
}

// Get returns the value registered under label.
func (r *Registry[T]) Get(label string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items.Get(normalize(label))
}

// Has reports whether label is registered.
func (r *Registry[T]) Has(label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items.Has(normalize(label))
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items.Len()
}

// Labels returns the registered labels in registration order.
func (r *Registry[T]) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items.Keys()
}

// Values returns the registered values in registration order.
func (r *Registry[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items.Values()
}

// ForEach calls fn for every entry in registration order.
func (r *Registry[T]) ForEach(fn func(label string, value T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.items.ForEach(fn)
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
