package util

import "testing"

func TestBucketKey_StableAndFixedWidth(t *testing.T) {
	t.Parallel()

	a := BucketKey("campaign:42:query")
	b := BucketKey("campaign:42:query")
	if a != b {
		t.Fatalf("BucketKey not stable: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("BucketKey length = %d, want 16", len(a))
	}
	if BucketKey("") != "cbf29ce484222325" {
		t.Fatalf("empty key must hash to the FNV-1a offset basis, got %q", BucketKey(""))
	}
	if BucketKey("a") == BucketKey("b") {
		t.Fatal("distinct short keys should not collide")
	}
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id     int64
		shards int
		want   int
	}{
		{0, 10, 0},
		{7, 10, 7},
		{23, 10, 3},
		{-1, 10, 9},
		{-10, 10, 0},
		{-23, 10, 7},
		{99, 1, 0},
		{99, 0, 0},
	}
	for _, tc := range cases {
		if got := ShardIndex(tc.id, tc.shards); got != tc.want {
			t.Errorf("ShardIndex(%d, %d) = %d, want %d", tc.id, tc.shards, got, tc.want)
		}
	}
}
