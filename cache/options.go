package cache

import (
	"fmt"
	"time"

	"github.com/IvanBrykalov/campaigncache/internal/util"
	"github.com/IvanBrykalov/campaigncache/policy"
	"github.com/IvanBrykalov/campaigncache/policy/oldest"
	"go.uber.org/zap"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictTTL: the entry outlived the TTL (found by Get or by the sweep).
	EvictTTL EvictReason = iota
	// EvictCapacity: removed by the policy pass of a capacity eviction.
	EvictCapacity
)

func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Metrics exposes shard-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Hooks may be called with the shard lock held; keep them cheap.
type Metrics interface {
	Hit(shard int)
	// Write is called once per Put, before any eviction it triggers.
	Write(shard int)
	Evict(shard int, reason EvictReason, n int)
	Size(shard int, entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a Registry. Shards, TTL and Capacity are required;
// everything else has a default:
//   - empty Dir    => persistence disabled (shards live in memory only)
//   - nil Policy   => oldest.New() (least-recently-stored first)
//   - nil Hash     => 64-bit FNV-1a in hex
//   - nil Logger   => zap.NewNop()
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => time.Now()
type Options struct {
	// Shards is the number of shard indices; campaign ids are reduced modulo Shards.
	Shards int

	// TTL is how long an entry stays readable. It is truncated to whole
	// seconds and must be at least one second.
	TTL time.Duration

	// Capacity is the per-shard entry count that triggers eviction on Put.
	Capacity int

	// Dir holds one "<index>_cache.json" file per shard.
	Dir string

	// Policy picks victims when expired entries alone do not free enough room.
	Policy policy.Policy

	// Hash maps a key to its collision-bucket key. It must be stable across
	// runs; entries loaded from disk are re-bucketed with it.
	Hash func(key string) string

	Logger  *zap.Logger
	Metrics Metrics

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}

// withDefaults validates opt and fills in the optional fields.
func (opt Options) withDefaults() (Options, error) {
	switch {
	case opt.Shards <= 0:
		return opt, fmt.Errorf("%w: shards must be > 0, got %d", ErrInvalidOptions, opt.Shards)
	case opt.Capacity <= 0:
		return opt, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidOptions, opt.Capacity)
	case opt.TTL < time.Second:
		return opt, fmt.Errorf("%w: ttl must be at least 1s, got %s", ErrInvalidOptions, opt.TTL)
	}
	if opt.Policy == nil {
		opt.Policy = oldest.New()
	}
	if opt.Hash == nil {
		opt.Hash = util.BucketKey
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Clock == nil {
		opt.Clock = systemClock{}
	}
	return opt, nil
}

type systemClock struct{}

func (systemClock) NowUnixNano() int64 { return time.Now().UnixNano() }
