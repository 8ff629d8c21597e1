// Package oldest implements least-recently-stored forced eviction.
package oldest

import (
	"cmp"
	"slices"

	"github.com/IvanBrykalov/campaigncache/policy"
)

type oldest struct{}

// New returns a policy that evicts the entries with the oldest write time
// first. Ties are broken by bucket key, then by key, so the order is total.
func New() policy.Policy { return oldest{} }

// Victims sorts cands oldest-first and returns the first n.
func (oldest) Victims(cands []policy.Candidate, n int) []policy.Candidate {
	if n <= 0 || len(cands) == 0 {
		return nil
	}
	slices.SortFunc(cands, func(a, b policy.Candidate) int {
		if c := cmp.Compare(a.StoredAt, b.StoredAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Bucket, b.Bucket); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if n > len(cands) {
		n = len(cands)
	}
	return cands[:n]
}
