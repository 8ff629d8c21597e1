package cache

// Store is the contract a shard offers to request handlers.
// All methods are safe for concurrent use by multiple goroutines.
//
// Put and Get never fail: the cache is an acceleration layer, so internal
// problems are logged and turn into a miss (Get) or a dropped write (Put).
type Store[V any] interface {
	// Put stores key→value stamped with the current time, replacing any
	// previous entry. A full shard is evicted first.
	Put(key string, value V)

	// Get returns the value for key if it was stored less than TTL ago.
	// An expired entry is removed as a side effect.
	Get(key string) (V, bool)

	// Remove deletes key if present and reports whether it existed.
	Remove(key string) bool

	// Len returns the number of resident entries, expired ones included
	// until they are discovered.
	Len() int

	// Flush writes the shard to its file. Errors are also logged.
	Flush() error
}

var _ Store[any] = (*Shard[any])(nil)
