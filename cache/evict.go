package cache

import (
	"github.com/IvanBrykalov/campaigncache/policy"
	"go.uber.org/zap"
)

// evictLocked frees room before an insert into a full shard.
//
// First every expired entry is swept. If that freed fewer than target
// entries, the policy picks the remainder among the live ones. Counting is
// by entries, not buckets, so colliding keys are accounted for individually.
func (s *Shard[V]) evictLocked(now int64) {
	initial := s.count

	swept := 0
	for bk, b := range s.buckets {
		for k, e := range b {
			if e.expired(now, s.ttl) {
				delete(b, k)
				swept++
			}
		}
		if len(b) == 0 {
			delete(s.buckets, bk)
		}
	}
	s.count -= swept

	forced := 0
	if short := s.target - (initial - s.count); short > 0 && s.count > 0 {
		cands := make([]policy.Candidate, 0, s.count)
		for bk, b := range s.buckets {
			for k, e := range b {
				cands = append(cands, policy.Candidate{Bucket: bk, Key: k, StoredAt: e.StoredAt})
			}
		}
		for _, c := range s.pol.Victims(cands, short) {
			if s.removeLocked(c.Bucket, c.Key) {
				forced++
			}
		}
		if forced < short && s.count > 0 {
			s.log.Warn("cache: eviction policy freed less than requested",
				zap.Int("requested", short),
				zap.Int("freed", forced),
			)
		}
	}

	if swept > 0 {
		s.expired.Add(int64(swept))
		s.metrics.Evict(s.index, EvictTTL, swept)
	}
	if forced > 0 {
		s.evictions.Add(int64(forced))
		s.metrics.Evict(s.index, EvictCapacity, forced)
	}
	s.log.Debug("cache: evicted",
		zap.Int("before", initial),
		zap.Int("expired", swept),
		zap.Int("forced", forced),
		zap.Int("after", s.count),
	)
}
