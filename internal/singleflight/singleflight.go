// Package singleflight coalesces concurrent calls that share a key.
package singleflight

import (
	"errors"
	"sync"
)

// ErrPanicked is handed to the followers of a flight whose fn panicked.
// The leader itself sees the original panic.
var ErrPanicked = errors.New("singleflight: fn panicked")

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once per flight. Other concurrent
// callers wait for the shared result.
//
// The registry uses it to build a shard (and read its file) exactly once
// while other shard indices keep loading in parallel.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
	dups int
}

// Do runs fn once for the given key. Concurrent calls with the same key
// block until the leader publishes its result and receive the same value.
// shared reports whether the result was handed to more than one caller.
//
// There is no cancellation: shard loads are bounded file reads.
func (g *Group[K, V]) Do(key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &call[V]{done: make(chan struct{}), err: ErrPanicked}
	g.m[key] = c
	g.mu.Unlock()

	// The flight is retired even if fn panics, so later callers start a new one.
	defer func() {
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		// Publishing (val, err) happens-before close(done).
		close(c.done)
	}()

	// Execute fn outside the lock.
	c.val, c.err = fn()

	g.mu.Lock()
	shared = c.dups > 0
	g.mu.Unlock()
	return c.val, c.err, shared
}
