// Package positional implements bucket-positional forced eviction.
//
// Buckets are walked in ascending bucket-key order and dropped whole until
// enough entries were freed. This ignores write times entirely: it is cheap
// and deterministic, and matches caches that trim a fixed prefix of their
// bucket collection. Since a bucket may hold several colliding keys, a single
// pass can free more than requested.
package positional

import (
	"cmp"
	"slices"

	"github.com/IvanBrykalov/campaigncache/policy"
)

type positional struct{}

// New returns a policy that removes whole buckets from the front of the
// bucket-key order.
func New() policy.Policy { return positional{} }

func (positional) Victims(cands []policy.Candidate, n int) []policy.Candidate {
	if n <= 0 || len(cands) == 0 {
		return nil
	}
	slices.SortFunc(cands, func(a, b policy.Candidate) int {
		if c := cmp.Compare(a.Bucket, b.Bucket); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	end := 0
	for end < len(cands) && end < n {
		// take the whole bucket starting at end
		b := cands[end].Bucket
		for end < len(cands) && cands[end].Bucket == b {
			end++
		}
	}
	return cands[:end]
}
