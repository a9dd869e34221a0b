// Package lookup resolves vocabulary terms and identifiers to store keys.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/inodb/gtload/internal/store"
)

// TermSource provides the full term list of a vocabulary.
type TermSource interface {
	Terms(ctx context.Context, vocab string) ([]store.Term, error)
}

// FullCache holds every term of one vocabulary, loaded once. Terms match
// case-insensitively and are never sent back to the database, so values
// containing quotes are safe.
type FullCache struct {
	vocab string
	keys  map[string]int64
}

// LoadFullCache reads every term of vocab from src.
func LoadFullCache(ctx context.Context, src TermSource, vocab string) (*FullCache, error) {
	terms, err := src.Terms(ctx, vocab)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary %s: %w", vocab, err)
	}
	c := &FullCache{vocab: vocab, keys: make(map[string]int64, len(terms))}
	for _, t := range terms {
		c.keys[strings.ToLower(t.Term)] = t.Key
	}
	return c, nil
}

// Lookup returns the key of term.
func (c *FullCache) Lookup(term string) (int64, bool) {
	key, ok := c.keys[strings.ToLower(term)]
	return key, ok
}

// Len returns the number of cached terms.
func (c *FullCache) Len() int {
	return len(c.keys)
}

// LoadFunc loads the value for one key. found is false when the key does
// not exist.
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (value V, found bool, err error)

// LazyCache loads values on demand. Only hits are remembered: a miss is
// retried on the next lookup, so entities created later in the run become
// visible once committed.
type LazyCache[K comparable, V any] struct {
	load   LoadFunc[K, V]
	values map[K]V
	loads  int
}

// NewLazyCache creates a cache backed by load.
func NewLazyCache[K comparable, V any](load func(ctx context.Context, key K) (V, bool, error)) *LazyCache[K, V] {
	return &LazyCache[K, V]{
		load:   load,
		values: make(map[K]V),
	}
}

// Lookup returns the value for key, loading it if it is not cached.
func (c *LazyCache[K, V]) Lookup(ctx context.Context, key K) (V, bool, error) {
	if v, ok := c.values[key]; ok {
		return v, true, nil
	}
	c.loads++
	v, found, err := c.load(ctx, key)
	if err != nil || !found {
		var zero V
		return zero, false, err
	}
	c.values[key] = v
	return v, true, nil
}

// Forget drops a cached value.
func (c *LazyCache[K, V]) Forget(key K) {
	delete(c.values, key)
}

// Loads returns how many times the loader was called.
func (c *LazyCache[K, V]) Loads() int {
	return c.loads
}
