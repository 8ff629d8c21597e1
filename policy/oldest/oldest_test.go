package oldest

import (
	"testing"

	"github.com/IvanBrykalov/campaigncache/policy"
)

func keys(cs []policy.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Key
	}
	return out
}

// Victims must come out oldest-first regardless of input order.
func TestOldest_PicksLeastRecentlyStored(t *testing.T) {
	t.Parallel()

	cands := []policy.Candidate{
		{Bucket: "b3", Key: "c", StoredAt: 30},
		{Bucket: "b1", Key: "a", StoredAt: 10},
		{Bucket: "b4", Key: "d", StoredAt: 40},
		{Bucket: "b2", Key: "b", StoredAt: 20},
	}
	got := keys(New().Victims(cands, 2))
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Victims = %v, want [a b]", got)
	}
}

// Equal timestamps fall back to bucket, then key ordering.
func TestOldest_TieBreakIsDeterministic(t *testing.T) {
	t.Parallel()

	cands := []policy.Candidate{
		{Bucket: "b2", Key: "z", StoredAt: 5},
		{Bucket: "b1", Key: "y", StoredAt: 5},
		{Bucket: "b1", Key: "x", StoredAt: 5},
	}
	got := keys(New().Victims(cands, 3))
	want := []string{"x", "y", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Victims = %v, want %v", got, want)
		}
	}
}

func TestOldest_Bounds(t *testing.T) {
	t.Parallel()

	p := New()
	if v := p.Victims(nil, 3); len(v) != 0 {
		t.Fatalf("empty input must yield no victims, got %v", v)
	}
	one := []policy.Candidate{{Bucket: "b", Key: "k", StoredAt: 1}}
	if v := p.Victims(one, 0); len(v) != 0 {
		t.Fatalf("n=0 must yield no victims, got %v", v)
	}
	if v := p.Victims(one, 10); len(v) != 1 {
		t.Fatalf("n beyond len must return everything, got %v", v)
	}
}
