package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IvanBrykalov/campaigncache/cache"
)

type fixedClock struct{ sec int64 }

func (c fixedClock) NowUnixNano() int64 { return c.sec * int64(time.Second) }

// writeShard produces a real shard file through the cache package.
func writeShard(t *testing.T, dir string) string {
	t.Helper()
	reg, err := cache.New[string](cache.Options{
		Shards:   4,
		TTL:      time.Hour,
		Capacity: 16,
		Dir:      dir,
		Clock:    fixedClock{sec: 1_000},
		Hash:     func(k string) string { return k[:1] },
	})
	if err != nil {
		t.Fatal(err)
	}
	s := reg.Shard(2)
	s.Put("a1", "x")
	s.Put("a2", "y")
	s.Put("b1", "z")
	if err := reg.Close(); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "2_cache.json")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInspect_Summary(t *testing.T) {
	path := writeShard(t, t.TempDir())

	out, err := execute(t, "inspect", path, "--ttl", "1h", "--now", "5000")
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	for _, want := range []string{
		"buckets:   2 (1 colliding)",
		"entries:   3",
		"expired:   3 (ttl 1h0m0s)",
		"oldest:    1970-01-01T00:16:40Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspect_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "inspect", filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("missing file must fail")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "inspect", bad); err == nil {
		t.Fatal("malformed file must fail")
	}
	if _, err := execute(t, "inspect"); err == nil {
		t.Fatal("missing argument must fail")
	}
}

func TestBench_Short(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "bench",
		"--duration", "100ms",
		"--workers", "2",
		"--campaigns", "8",
		"--shards", "4",
		"--cap", "64",
		"--keys", "500",
		"--seed", "1",
		"--dir", dir,
		"--persist",
	)
	if err != nil {
		t.Fatalf("bench: %v\n%s", err, out)
	}
	if !strings.Contains(out, "hit-rate=") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("--persist must leave shard files behind")
	}
}

// A malformed CAMPAIGNCACHE_* variable fails the bench instead of being
// replaced by built-in defaults.
func TestBench_BadEnvironment(t *testing.T) {
	for name, kv := range map[string][2]string{
		"ttl":    {"CAMPAIGNCACHE_TTL", "bogus"},
		"policy": {"CAMPAIGNCACHE_POLICY", "random"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			out, err := execute(t, "bench", "--duration", "10ms")
			if err == nil {
				t.Fatalf("bench must fail with %s=%s\n%s", kv[0], kv[1], out)
			}
			if !strings.Contains(err.Error(), "load config") {
				t.Fatalf("err = %v, want a config error", err)
			}
		})
	}
}

func TestRun_UsageError(t *testing.T) {
	if code := Run([]string{"no-such-command"}); code != ExitUsageError {
		t.Fatalf("Run = %d, want %d", code, ExitUsageError)
	}
}
