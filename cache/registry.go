package cache

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/campaigncache/internal/singleflight"
	"github.com/IvanBrykalov/campaigncache/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry owns the shards of one cache. A shard is built the first time its
// index is requested and reused for the life of the Registry.
// All methods are safe for concurrent use by multiple goroutines.
//
// Create one Registry at startup, hand it to request handlers and Close it
// on shutdown so every live shard reaches disk.
type Registry[V any] struct {
	opt Options

	mu     sync.RWMutex
	shards map[int]*Shard[V]

	// sf coalesces concurrent first requests for the same index, so the
	// shard file is read once while other indices load in parallel.
	sf singleflight.Group[int, *Shard[V]]

	closed atomic.Bool
}

// New validates opt and returns an empty Registry. No file is read until a
// shard is requested.
func New[V any](opt Options) (*Registry[V], error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Registry[V]{
		opt:    opt,
		shards: make(map[int]*Shard[V]),
	}, nil
}

// Shard returns the shard serving campaignID (reduced modulo Options.Shards,
// negative ids included). Concurrent first calls for one index all receive
// the same instance.
func (r *Registry[V]) Shard(campaignID int64) *Shard[V] {
	idx := util.ShardIndex(campaignID, r.opt.Shards)

	// fast path
	r.mu.RLock()
	s := r.shards[idx]
	r.mu.RUnlock()
	if s != nil {
		return s
	}

	s, err, _ := r.sf.Do(idx, func() (*Shard[V], error) {
		// double-check: a flight that just finished may have registered it
		r.mu.RLock()
		existing := r.shards[idx]
		r.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		ns := newShard[V](idx, r.opt)
		r.mu.Lock()
		r.shards[idx] = ns
		r.mu.Unlock()
		if r.closed.Load() {
			r.opt.Logger.Warn("cache: shard created after Close, it will not be persisted",
				zap.Int("shard", idx), zap.Int64("campaign", campaignID))
		} else {
			r.opt.Logger.Debug("cache: shard created", zap.Int("shard", idx), zap.Int64("campaign", campaignID))
		}
		return ns, nil
	})
	if err != nil {
		// the flight we joined panicked; start our own
		return r.Shard(campaignID)
	}
	return s
}

// Len returns the total number of resident entries across live shards.
func (r *Registry[V]) Len() int {
	total := 0
	for _, s := range r.live() {
		total += s.Len()
	}
	return total
}

// Indices returns the indices of the shards created so far, ascending.
func (r *Registry[V]) Indices() []int {
	r.mu.RLock()
	out := make([]int, 0, len(r.shards))
	for idx := range r.shards {
		out = append(out, idx)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Flush persists every live shard concurrently. Shards that fail are logged
// and their errors joined; the others are still written.
func (r *Registry[V]) Flush() error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.flushAll()
}

// Close flushes every live shard once and marks the registry closed.
// Shards keep serving from memory afterwards. Calling Close again is a no-op.
// Shards first requested after Close are never written to disk; their
// creation is logged at Warn.
func (r *Registry[V]) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return r.flushAll()
}

func (r *Registry[V]) flushAll() error {
	shards := r.live()
	errs := make([]error, len(shards))

	var g errgroup.Group
	for i, s := range shards {
		g.Go(func() error {
			errs[i] = s.Flush()
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// live snapshots the registered shards.
func (r *Registry[V]) live() []*Shard[V] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Shard[V], 0, len(r.shards))
	for _, s := range r.shards {
		out = append(out, s)
	}
	return out
}
