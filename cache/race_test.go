package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A mixed workload of concurrent Put/Get/Remove/Flush across campaigns with
// a capacity small enough to keep eviction busy.
// Should pass under `-race` without detector reports.
func TestRace_Basic(t *testing.T) {
	r := newTestRegistry[[]byte](t, Options{
		Shards:   8,
		TTL:      time.Second,
		Capacity: 256,
		Dir:      t.TempDir(),
	})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 5_000
	deadline := time.Now().Add(2 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				s := r.Shard(rnd.Int63n(64) - 32)
				k := "k:" + strconv.Itoa(rnd.Intn(keyspace))
				switch n := rnd.Intn(1000); {
				case n == 0: // ~0.1% Flush
					_ = s.Flush()
				case n < 50: // ~5% Remove
					s.Remove(k)
				case n < 250: // ~20% Put
					s.Put(k, []byte("x"))
				default: // ~75% Get
					s.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	for _, idx := range r.Indices() {
		s := r.Shard(int64(idx))
		st := s.Stats()
		if st.Entries > 256 {
			t.Fatalf("shard %d holds %d entries, capacity is 256", idx, st.Entries)
		}
		if st.Entries > 0 && st.Buckets == 0 {
			t.Fatalf("shard %d: entries without buckets: %+v", idx, st)
		}
	}
}
