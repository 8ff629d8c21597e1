package cache

// Entry is a stored value plus its write time. Entries are never mutated in
// place; a Put for the same key replaces the whole Entry.
type Entry[V any] struct {
	Value    V     `json:"value"`
	StoredAt int64 `json:"timestamp"` // unix seconds
}

// bucket groups the entries whose keys share a hash. Lookups inside a bucket
// always use the original key.
type bucket[V any] map[string]Entry[V]

// expired reports whether e is at least ttl seconds old at now.
func (e Entry[V]) expired(now, ttl int64) bool { return now-e.StoredAt >= ttl }
