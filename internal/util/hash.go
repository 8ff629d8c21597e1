// Package util contains internal helpers (hashing, shard selection, padding).
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211

	hexDigits = "0123456789abcdef"
)

// Fnv64a hashes s using 64-bit FNV-1a. It walks the string bytes directly
// and does not allocate.
func Fnv64a(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// BucketKey returns the collision-bucket key for a cache key: its FNV-1a hash
// as 16 lowercase hex digits. Distinct keys may share a bucket key; callers
// must still compare the original key inside the bucket.
func BucketKey(key string) string {
	h := Fnv64a(key)
	var buf [16]byte
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = hexDigits[h&0xf]
		h >>= 4
	}
	return string(buf[:])
}
