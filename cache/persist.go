package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// fileSuffix follows the shard index in a shard file name.
const fileSuffix = "_cache.json"

// shardPath returns "<dir>/<index>_cache.json".
func shardPath(dir string, index int) string {
	return filepath.Join(dir, strconv.Itoa(index)+fileSuffix)
}

// fileEntry is the on-disk shape of an entry. Both fields are required.
type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp *int64          `json:"timestamp"`
}

// decodeImage strictly decodes a shard file: unknown fields, entries
// missing value or timestamp, and trailing data are all errors.
func decodeImage(data []byte) (map[string]map[string]fileEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var img map[string]map[string]fileEntry
	if err := dec.Decode(&img); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after shard image")
	}
	for bk, b := range img {
		for k, e := range b {
			if len(e.Value) == 0 || e.Timestamp == nil {
				return nil, fmt.Errorf("bucket %q key %q: entry needs value and timestamp", bk, k)
			}
		}
	}
	return img, nil
}

// load fills an empty shard from its file. A missing, unreadable or
// malformed file leaves the shard empty; only the latter two are logged.
// A panic while loading (a broken Hash, say) is logged the same way.
//
// Entries are re-bucketed with the shard's hash, so a file written with a
// different hash function still yields reachable entries.
func (s *Shard[V]) load() {
	defer func() {
		if r := recover(); r != nil {
			s.buckets, s.count = make(map[string]bucket[V]), 0
			s.log.Error("cache: recovered from panic while loading shard, starting empty",
				zap.String("path", s.path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("cache: read shard file", zap.String("path", s.path), zap.Error(err))
		}
		return
	}

	img, err := decodeImage(data)
	if err != nil {
		s.log.Warn("cache: decode shard file, starting empty", zap.String("path", s.path), zap.Error(err))
		return
	}

	buckets := make(map[string]bucket[V], len(img))
	count := 0
	for _, b := range img {
		for k, fe := range b {
			var v V
			if err := json.Unmarshal(fe.Value, &v); err != nil {
				s.log.Warn("cache: decode shard file, starting empty",
					zap.String("path", s.path), zap.String("key", k), zap.Error(err))
				return
			}
			bk := s.hash(k)
			dst, ok := buckets[bk]
			if !ok {
				dst = make(bucket[V], 1)
				buckets[bk] = dst
			}
			if _, dup := dst[k]; !dup {
				count++
			}
			dst[k] = Entry[V]{Value: v, StoredAt: *fe.Timestamp}
		}
	}
	s.buckets, s.count = buckets, count
	s.log.Debug("cache: shard loaded",
		zap.String("path", s.path),
		zap.Int("entries", s.count),
		zap.Int("buckets", len(s.buckets)),
	)
}

// Flush writes the whole shard to its file, replacing the previous one.
// The shard keeps serving from memory whatever the outcome; failures are
// logged and returned. Flush is a no-op when persistence is disabled.
func (s *Shard[V]) Flush() error {
	if s.path == "" {
		return nil
	}
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	data, err := json.Marshal(s.buckets)
	entries := s.count
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("cache: encode shard", zap.Error(err))
		return fmt.Errorf("encode shard %d: %w", s.index, err)
	}

	if err := replaceFile(s.path, data); err != nil {
		s.log.Warn("cache: persist shard", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("persist shard %d: %w", s.index, err)
	}
	s.log.Debug("cache: shard persisted", zap.String("path", s.path), zap.Int("entries", entries))
	return nil
}

// replaceFile writes data next to path, removes the old file and renames the
// new one into place, so a crash mid-write never leaves a truncated file.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cleanup()
		return fmt.Errorf("remove old file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// FileStats summarises a shard file without loading it into a registry.
type FileStats struct {
	Buckets   int
	Entries   int
	Colliding int // buckets holding more than one key
	Expired   int // entries whose age is >= ttl at the inspection time
	Oldest    time.Time
	Newest    time.Time
}

// InspectFile decodes the shard file at path and reports its shape. Values
// are not decoded. Unlike shard loading, a malformed file is an error here.
func InspectFile(path string, ttl time.Duration, now time.Time) (FileStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileStats{}, fmt.Errorf("read shard file: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return FileStats{}, fmt.Errorf("decode shard file: %w", err)
	}

	var st FileStats
	var oldest, newest int64
	ttlSec, nowSec := int64(ttl/time.Second), now.Unix()
	for _, b := range img {
		if len(b) == 0 {
			continue
		}
		st.Buckets++
		if len(b) > 1 {
			st.Colliding++
		}
		for _, fe := range b {
			e := Entry[json.RawMessage]{StoredAt: *fe.Timestamp}
			if st.Entries == 0 || e.StoredAt < oldest {
				oldest = e.StoredAt
			}
			if st.Entries == 0 || e.StoredAt > newest {
				newest = e.StoredAt
			}
			st.Entries++
			if ttlSec > 0 && e.expired(nowSec, ttlSec) {
				st.Expired++
			}
		}
	}
	if st.Entries > 0 {
		st.Oldest, st.Newest = time.Unix(oldest, 0).UTC(), time.Unix(newest, 0).UTC()
	}
	return st, nil
}
