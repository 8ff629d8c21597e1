package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/campaigncache/cache"
	"github.com/IvanBrykalov/campaigncache/config"
	pmet "github.com/IvanBrykalov/campaigncache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type benchFlags struct {
	shards    int
	capacity  int
	ttl       time.Duration
	dir       string
	policy    string
	campaigns int

	workers  int
	duration time.Duration
	readPct  int

	keys  int
	zipfS float64
	zipfV float64
	seed  int64

	httpAddr string
	persist  bool
}

func newBenchCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	var f benchFlags

	// Environment supplies the defaults; flags override them. A bad
	// environment is reported when the command runs.
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Config{Shards: 10, TTL: time.Hour, Capacity: 1000, Policy: "oldest"}
	}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic read/write workload across campaigns",
		Long: "Bench drives Get/Put traffic with a Zipf key distribution against a registry " +
			"built from CAMPAIGNCACHE_* settings (overridable by flags) and reports hit rate and throughput.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil {
				return fmt.Errorf("load config: %w", cfgErr)
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runBench(cmd, f, logger)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.shards, "shards", cfg.Shards, "number of shard indices")
	fl.IntVar(&f.capacity, "cap", cfg.Capacity, "per-shard capacity (entries)")
	fl.DurationVar(&f.ttl, "ttl", cfg.TTL, "entry time-to-live")
	fl.StringVar(&f.dir, "dir", cfg.Dir, "storage directory")
	fl.StringVar(&f.policy, "policy", cfg.Policy, "forced eviction order: oldest | positional")
	fl.IntVar(&f.campaigns, "campaigns", 100, "number of distinct campaign ids")
	fl.IntVar(&f.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	fl.DurationVar(&f.duration, "duration", 10*time.Second, "benchmark duration")
	fl.IntVar(&f.readPct, "reads", 80, "read percentage [0..100]")
	fl.IntVar(&f.keys, "keys", 100_000, "keyspace size per campaign")
	fl.Float64Var(&f.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	fl.Float64Var(&f.zipfV, "zipf_v", 1.0, "Zipf v")
	fl.Int64Var(&f.seed, "seed", time.Now().UnixNano(), "random seed")
	fl.StringVar(&f.httpAddr, "http", "", "serve Prometheus metrics and pprof at addr (e.g. :8080); empty = disabled")
	fl.BoolVar(&f.persist, "persist", false, "flush shards to --dir when done")
	return cmd
}

func runBench(cmd *cobra.Command, f benchFlags, logger *zap.Logger) error {
	if f.zipfS <= 1 || f.keys < 1 {
		return errors.New("zipf_s must be > 1 and keys >= 1")
	}
	opt, err := config.Config{
		Shards:   f.shards,
		TTL:      f.ttl,
		Capacity: f.capacity,
		Dir:      f.dir,
		Policy:   f.policy,
	}.Options()
	if err != nil {
		return err
	}
	if !f.persist {
		opt.Dir = "" // keep the bench in memory
	}
	opt.Logger = logger
	promReg := prometheus.NewRegistry()
	opt.Metrics = pmet.New(promReg, "campaigncache", "bench", nil)

	if f.httpAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		srv := &http.Server{Addr: f.httpAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics: serving", zap.String("addr", f.httpAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	reg, err := cache.New[string](opt)
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Warn("close registry", zap.Error(err))
		}
	}()

	workers := f.workers
	if workers <= 0 {
		workers = 1
	}
	campaigns := int64(f.campaigns)
	if campaigns <= 0 {
		campaigns = 1
	}

	var reads, writes, hits, total uint64
	ctx, cancel := context.WithTimeout(cmd.Context(), f.duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			rnd := rand.New(rand.NewSource(f.seed + int64(id)*9973))
			zipf := rand.NewZipf(rnd, f.zipfS, f.zipfV, uint64(f.keys-1))

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				s := reg.Shard(rnd.Int63n(campaigns))
				k := "q:" + strconv.FormatUint(zipf.Uint64(), 10)
				if rnd.Intn(100) < f.readPct {
					atomic.AddUint64(&reads, 1)
					if _, ok := s.Get(k); ok {
						atomic.AddUint64(&hits, 1)
						continue
					}
				}
				// a miss is followed by a write, as a host would do
				atomic.AddUint64(&writes, 1)
				s.Put(k, "v"+strconv.Itoa(rnd.Int()))
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	hitsN := atomic.LoadUint64(&hits)
	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "policy=%s shards=%d cap=%d ttl=%s campaigns=%d workers=%d keys=%d dur=%v seed=%d\n",
		f.policy, f.shards, f.capacity, f.ttl, campaigns, workers, f.keys, elapsed, f.seed)
	fmt.Fprintf(out, "ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, atomic.LoadUint64(&writes))
	fmt.Fprintf(out, "hits=%d  hit-rate=%.2f%%  entries=%d  live shards=%d\n",
		hitsN, hitRate, reg.Len(), len(reg.Indices()))
	return nil
}
