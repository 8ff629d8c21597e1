// Package cache provides a process-local, disk-backed key/value cache
// partitioned into shards by campaign id, with TTL expiration and
// capacity-triggered eviction.
//
// # Design
//
//   - Registry: maps a campaign id to shard index id mod Options.Shards and
//     builds each Shard on first use (double-checked locking plus
//     singleflight, so one instance per index even under concurrent first
//     access). There is no global state: the host owns the Registry.
//
//   - Storage: a shard keeps map[bucketKey]map[key]Entry. The bucket key is
//     a hash of the key (FNV-1a by default); colliding keys share a bucket
//     and are told apart by the original key. Empty buckets are dropped.
//
//   - TTL: expiration is lazy. Get removes an entry whose age is >= TTL and
//     reports a miss. Nothing runs in the background.
//
//   - Eviction: a Put into a shard holding Capacity entries first sweeps all
//     expired entries. If that freed fewer than ceil(35% of Capacity), the
//     configured policy (oldest-stored first by default, see package policy)
//     removes the rest.
//
//   - Persistence: a shard reads "<Dir>/<index>_cache.json" when it is built
//     and writes it back on Flush or Registry.Close. Missing or malformed
//     files mean an empty shard. Counters are never persisted.
//
//   - Failure model: Put and Get never return errors. I/O problems and
//     recovered panics are logged through Options.Logger (zap) and the shard
//     keeps working in memory.
//
// # Basic usage
//
//	reg, err := cache.New[[]byte](cache.Options{
//	    Shards:   10,
//	    TTL:      time.Hour,
//	    Capacity: 1000,
//	    Dir:      "/var/cache/campaigns",
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	s := reg.Shard(campaignID)
//	if v, ok := s.Get(query); ok {
//	    return v
//	}
//	v := compute(query)
//	s.Put(query, v)
//
// # Exporting metrics
//
//	m := prom.New(nil, "campaigncache", "demo", nil) // implements Metrics
//	reg, _ := cache.New[string](cache.Options{Shards: 4, TTL: time.Minute, Capacity: 500, Metrics: m})
//
// # Concurrency
//
// Every Shard method takes the shard's mutex; different shards never
// contend. Flush encodes under the lock and writes the file outside it.
// Only one process may own a shard file: when two processes flush the same
// index the last writer wins.
package cache
