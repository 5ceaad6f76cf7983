package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// entry is the on-disk envelope of one cached value.
type entry[V any] struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	Version   string    `json:"version"`
	Value     V         `json:"value"`
}

// Store is one cache tier: a directory holding one file per key. A nil
// *Store is a disabled tier; every method is a no-op on it.
type Store[V any] struct {
	tier    string
	dir     string
	ttl     time.Duration
	version string
	codec   Codec
	logger  *slog.Logger
	metrics *metrics
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// Usage describes the contents and traffic of one tier.
type Usage struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Dir returns the directory of the tier.
func (s *Store[V]) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Get returns the value stored under key. Missing, expired, unreadable
// and version-mismatched entries are misses. Get never removes files.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	if s == nil {
		return zero, false
	}
	e, err := s.read(s.path(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("cache miss", "tier", s.tier, "key", key)
	case err != nil:
		s.metrics.failure(s.tier)
		s.logger.Debug("cache entry unreadable", "tier", s.tier, "key", key, "error", err)
	case e.Key != key || !s.valid(e):
		s.logger.Debug("cache entry stale", "tier", s.tier, "key", key, "version", e.Version)
	default:
		s.hits.Add(1)
		s.metrics.hit(s.tier)
		return e.Value, true
	}
	s.misses.Add(1)
	s.metrics.miss(s.tier)
	return zero, false
}

// Set stores v under key, replacing any previous entry. The entry is
// written to a temporary file first and renamed into place, so readers
// see either the old or the new entry. Failures are logged, not returned.
func (s *Store[V]) Set(key string, v V) {
	if s == nil {
		return
	}
	if err := s.write(key, v); err != nil {
		s.metrics.failure(s.tier)
		s.logger.Warn("cache write failed", "tier", s.tier, "key", key, "error", err)
		return
	}
	s.metrics.write(s.tier)
}

func (s *Store[V]) write(key string, v V) error {
	now := s.now()
	e := entry[V]{Key: key, CreatedAt: now, Version: s.version, Value: v}
	data, err := s.codec.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := filepath.Join(s.dir, tempPrefix+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace entry: %w", err)
	}
	return nil
}

// Clear removes every entry of the tier.
func (s *Store[V]) Clear() error {
	if s == nil {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("cache: clear %s tier: %w", s.tier, err)
	}
	return nil
}

// Cleanup removes expired, version-mismatched and unreadable entries along
// with abandoned temporary files. It returns the number of entries removed.
func (s *Store[V]) Cleanup() (int, error) {
	if s == nil {
		return 0, nil
	}
	files, err := s.files()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		path := filepath.Join(s.dir, f.Name())
		if strings.HasPrefix(f.Name(), tempPrefix) {
			_ = os.Remove(path)
			continue
		}
		if !s.isEntry(f.Name()) {
			continue
		}
		if e, err := s.read(path); err == nil && s.valid(e) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("cache: cleanup %s tier: %w", s.tier, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug("cache cleanup", "tier", s.tier, "removed", removed)
	}
	return removed, nil
}

// Usage reports the entries and bytes stored by the tier and its hit and
// miss counts since the store was created.
func (s *Store[V]) Usage() (Usage, error) {
	if s == nil {
		return Usage{}, nil
	}
	u := Usage{Hits: s.hits.Load(), Misses: s.misses.Load()}
	files, err := s.files()
	if err != nil {
		return u, err
	}
	for _, f := range files {
		if !s.isEntry(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		u.Entries++
		u.Bytes += info.Size()
	}
	return u, nil
}

const tempPrefix = ".tmp-"

func (s *Store[V]) path(key string) string {
	return filepath.Join(s.dir, key+"."+s.codec.Name())
}

func (s *Store[V]) isEntry(name string) bool {
	return !strings.HasPrefix(name, tempPrefix) && filepath.Ext(name) == "."+s.codec.Name()
}

func (s *Store[V]) files() ([]fs.DirEntry, error) {
	files, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read %s tier: %w", s.tier, err)
	}
	return files, nil
}

func (s *Store[V]) read(path string) (*entry[V], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e entry[V]
	if err := s.codec.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}

func (s *Store[V]) valid(e *entry[V]) bool {
	if e.Version != s.version {
		return false
	}
	// Expiry follows the TTL the tier is opened with, not the one the
	// entry was written under.
	return s.ttl <= 0 || s.now().Before(e.CreatedAt.Add(s.ttl))
}
