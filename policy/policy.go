// Package policy defines how a shard chooses entries for the forced pass of
// a capacity eviction, once expired entries alone did not free enough room.
package policy

// Candidate is a resident entry offered to a policy. It carries only the
// metadata needed for ordering, never the value itself.
type Candidate struct {
	Bucket   string // collision-bucket key (hash of Key)
	Key      string // original cache key
	StoredAt int64  // write time, unix seconds
}

// Policy selects victims for a forced eviction pass.
//
// Victims is called under the shard lock with every live entry of the shard
// and the number of entries that still have to go. It returns the entries to
// remove; returning fewer than n is allowed only when cands is exhausted.
// Policies may reorder cands in place and must be deterministic for a given
// input so evictions are reproducible in tests.
type Policy interface {
	Victims(cands []Candidate, n int) []Candidate
}

// Func adapts an ordinary function to the Policy interface.
type Func func(cands []Candidate, n int) []Candidate

// Victims calls f(cands, n).
func (f Func) Victims(cands []Candidate, n int) []Candidate { return f(cands, n) }
