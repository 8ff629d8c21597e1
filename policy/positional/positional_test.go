package positional

import (
	"testing"

	"github.com/IvanBrykalov/campaigncache/policy"
)

// Whole buckets go, in bucket-key order, even if that frees more than n.
func TestPositional_RemovesWholeBuckets(t *testing.T) {
	t.Parallel()

	cands := []policy.Candidate{
		{Bucket: "bb", Key: "k3", StoredAt: 1},
		{Bucket: "aa", Key: "k2", StoredAt: 9},
		{Bucket: "cc", Key: "k4", StoredAt: 2},
		{Bucket: "aa", Key: "k1", StoredAt: 8},
	}
	got := New().Victims(cands, 1)
	if len(got) != 2 {
		t.Fatalf("want the whole first bucket (2 entries), got %d: %v", len(got), got)
	}
	for _, c := range got {
		if c.Bucket != "aa" {
			t.Fatalf("unexpected victim %+v", c)
		}
	}
}

func TestPositional_SpansBucketsUntilSatisfied(t *testing.T) {
	t.Parallel()

	cands := []policy.Candidate{
		{Bucket: "b2", Key: "y"},
		{Bucket: "b1", Key: "x"},
		{Bucket: "b3", Key: "z"},
	}
	got := New().Victims(cands, 2)
	if len(got) != 2 || got[0].Key != "x" || got[1].Key != "y" {
		t.Fatalf("Victims = %v, want x then y", got)
	}
}

func TestPositional_Exhausts(t *testing.T) {
	t.Parallel()

	cands := []policy.Candidate{{Bucket: "b1", Key: "x"}}
	if got := New().Victims(cands, 5); len(got) != 1 {
		t.Fatalf("want every candidate when n exceeds supply, got %v", got)
	}
	if got := New().Victims(cands, 0); got != nil {
		t.Fatalf("n=0 must be a no-op, got %v", got)
	}
}
