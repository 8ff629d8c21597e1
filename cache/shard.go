package cache

import (
	"sync"
	"time"

	"github.com/IvanBrykalov/campaigncache/internal/util"
	"github.com/IvanBrykalov/campaigncache/policy"
	"go.uber.org/zap"
)

// evictPercent is the share of Capacity a capacity eviction must free.
const evictPercent = 35

// Shard is one independently stored and evicted partition of the cache.
// Shards are created by Registry.Shard; the zero value is not usable.
type Shard[V any] struct {
	// ---- guarded by mu ----
	mu      sync.Mutex
	buckets map[string]bucket[V]
	count   int // resident entries across all buckets

	// flushMu serialises writers of the shard file.
	flushMu sync.Mutex

	index    int
	path     string // empty => persistence disabled
	ttl      int64  // seconds
	capacity int
	target   int // ceil(evictPercent% of capacity)

	hash    func(string) string
	pol     policy.Policy
	log     *zap.Logger
	metrics Metrics
	clock   Clock

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_         util.CacheLinePad
	hits      util.PaddedAtomicInt64
	writes    util.PaddedAtomicInt64
	expired   util.PaddedAtomicInt64
	evictions util.PaddedAtomicInt64
}

// Stats is a point-in-time view of a shard. Counters start at zero every
// process run; they are never persisted.
type Stats struct {
	Index   int
	Entries int
	Buckets int
	Hits    int64
	// Writes counts Put calls. Put is only issued after a lookup missed, so
	// hosts commonly read it as their miss count.
	Writes int64
	// Expired counts entries removed for outliving the TTL.
	Expired int64
	// Evicted counts entries removed by the policy pass.
	Evicted int64
}

// newShard builds shard index and loads its file, if any.
// opt must already carry defaults.
func newShard[V any](index int, opt Options) *Shard[V] {
	s := &Shard[V]{
		buckets:  make(map[string]bucket[V]),
		index:    index,
		ttl:      int64(opt.TTL / time.Second),
		capacity: opt.Capacity,
		target:   (evictPercent*opt.Capacity + 99) / 100,
		hash:     opt.Hash,
		pol:      opt.Policy,
		log:      opt.Logger.With(zap.Int("shard", index)),
		metrics:  opt.Metrics,
		clock:    opt.Clock,
	}
	if opt.Dir != "" {
		s.path = shardPath(opt.Dir, index)
		s.load()
	}
	s.metrics.Size(s.index, s.count)
	return s
}

// Put stores key→value with the current time. If the shard is at capacity,
// an eviction runs before the insert.
func (s *Shard[V]) Put(key string, value V) {
	s.writes.Add(1)
	s.metrics.Write(s.index)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverOp("put", key)

	now := s.now()
	if s.count >= s.capacity {
		s.evictLocked(now)
	}

	bk := s.hash(key)
	b, ok := s.buckets[bk]
	if !ok {
		b = make(bucket[V], 1)
		s.buckets[bk] = b
	}
	if _, exists := b[key]; !exists {
		s.count++
	}
	b[key] = Entry[V]{Value: value, StoredAt: now}
	s.metrics.Size(s.index, s.count)
}

// Get returns the value stored for key unless it is missing or expired.
// Expired entries are removed on discovery.
func (s *Shard[V]) Get(key string) (v V, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverOp("get", key)

	bk := s.hash(key)
	e, found := s.buckets[bk][key]
	if !found {
		return v, false
	}
	if e.expired(s.now(), s.ttl) {
		s.removeLocked(bk, key)
		s.expired.Add(1)
		s.metrics.Evict(s.index, EvictTTL, 1)
		s.metrics.Size(s.index, s.count)
		return v, false
	}

	s.hits.Add(1)
	s.metrics.Hit(s.index)
	return e.Value, true
}

// Remove deletes key if present. Returns true if the entry existed.
func (s *Shard[V]) Remove(key string) (removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverOp("remove", key)

	removed = s.removeLocked(s.hash(key), key)
	if removed {
		s.metrics.Size(s.index, s.count)
	}
	return removed
}

// Len returns the number of resident entries.
func (s *Shard[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Index returns the shard index this instance serves.
func (s *Shard[V]) Index() int { return s.index }

// Path returns the shard file, or "" when persistence is disabled.
func (s *Shard[V]) Path() string { return s.path }

// Stats returns a snapshot of the shard's size and counters.
func (s *Shard[V]) Stats() Stats {
	s.mu.Lock()
	entries, buckets := s.count, len(s.buckets)
	s.mu.Unlock()
	return Stats{
		Index:   s.index,
		Entries: entries,
		Buckets: buckets,
		Hits:    s.hits.Load(),
		Writes:  s.writes.Load(),
		Expired: s.expired.Load(),
		Evicted: s.evictions.Load(),
	}
}

// -------------------- internals (mu held) --------------------

func (s *Shard[V]) now() int64 {
	return s.clock.NowUnixNano() / int64(time.Second)
}

// removeLocked deletes key from bucket bk, dropping the bucket once empty.
// A missing bucket or key is logged and reported as false; count is left alone.
func (s *Shard[V]) removeLocked(bk, key string) bool {
	b, ok := s.buckets[bk]
	if !ok {
		s.log.Warn("cache: remove from missing bucket", zap.String("bucket", bk), zap.String("key", key))
		return false
	}
	if _, ok := b[key]; !ok {
		return false
	}
	delete(b, key)
	if len(b) == 0 {
		delete(s.buckets, bk)
	}
	s.count--
	return true
}

// recoverOp turns a panic inside an operation into a log record so a broken
// hash func or policy cannot take the host process down.
func (s *Shard[V]) recoverOp(op, key string) {
	if r := recover(); r != nil {
		s.log.Error("cache: recovered from panic",
			zap.String("op", op),
			zap.String("key", key),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)
	}
}
