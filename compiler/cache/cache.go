// Package cache implements the two-tier compilation cache: the ast tier
// maps flattened type definitions to their normalized document, the model
// tier maps a normalized document and resolver set to the schema model.
// Entries are files under one directory per tier, written atomically.
package cache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/graphdef/compiler/gen"
)

// Level selects the tiers that are active.
type Level string

// Cache levels.
const (
	LevelAST   Level = "ast"
	LevelModel Level = "model"
	LevelBoth  Level = "both"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelAST, LevelModel, LevelBoth:
		return true
	}
	return false
}

// DefaultDirectory is used when Config.Directory is empty.
const DefaultDirectory = ".graphdef-cache"

// FormatVersion is recorded in every entry. Entries written by another
// format version are misses.
const FormatVersion = "graphdef-cache/2"

// Config configures the cache.
type Config struct {
	Enabled bool
	// Level defaults to LevelBoth.
	Level Level
	// Directory defaults to DefaultDirectory.
	Directory string
	// TTL of new entries. Zero means entries never expire.
	TTL time.Duration
	// Serialization is "json" (default) or "msgpack".
	Serialization string
}

// Option configures optional cache collaborators.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry prometheus.Registerer
	now      func() time.Time
	version  string
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegisterer registers the cache counters with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithVersion overrides the entry format version.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// Tiers holds the active tiers. A nil tier is disabled.
type Tiers struct {
	AST   *Store[*ast.SchemaDocument]
	Model *Store[*gen.Graph]
}

// Stats reports the usage of both tiers.
type Stats struct {
	AST   Usage `json:"ast"`
	Model Usage `json:"model"`
}

// New creates the tiers selected by cfg. A disabled config yields empty
// tiers and touches no files; directories are created on first write.
func New(cfg Config, opts ...Option) (*Tiers, error) {
	if !cfg.Enabled {
		return &Tiers{}, nil
	}
	o := options{logger: slog.Default(), now: time.Now, version: FormatVersion}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Level == "" {
		cfg.Level = LevelBoth
	}
	if !cfg.Level.Valid() {
		return nil, fmt.Errorf("cache: unknown level %q", cfg.Level)
	}
	if cfg.Directory == "" {
		cfg.Directory = DefaultDirectory
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("cache: negative ttl %s", cfg.TTL)
	}
	codec, err := CodecFor(cfg.Serialization)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(o.registry)
	if err != nil {
		return nil, fmt.Errorf("cache: register metrics: %w", err)
	}
	t := &Tiers{}
	if cfg.Level != LevelModel {
		t.AST = newStore[*ast.SchemaDocument]("ast", cfg, codec, m, &o)
	}
	if cfg.Level != LevelAST {
		t.Model = newStore[*gen.Graph]("model", cfg, codec, m, &o)
	}
	return t, nil
}

func newStore[V any](tier string, cfg Config, codec Codec, m *metrics, o *options) *Store[V] {
	return &Store[V]{
		tier:    tier,
		dir:     filepath.Join(cfg.Directory, tier),
		ttl:     cfg.TTL,
		version: o.version,
		codec:   codec,
		logger:  o.logger.With("component", "cache"),
		metrics: m,
		now:     o.now,
	}
}

// Enabled reports whether any tier is active.
func (t *Tiers) Enabled() bool {
	return t != nil && (t.AST != nil || t.Model != nil)
}

// Clear removes every entry of both tiers.
func (t *Tiers) Clear() error {
	if !t.Enabled() {
		return nil
	}
	var g errgroup.Group
	g.Go(t.AST.Clear)
	g.Go(t.Model.Clear)
	return g.Wait()
}

// Removed counts the entries deleted by Cleanup per tier.
type Removed struct {
	AST   int `json:"ast"`
	Model int `json:"model"`
}

// Total returns the number of entries removed from both tiers.
func (r Removed) Total() int { return r.AST + r.Model }

// Cleanup removes stale entries from both tiers.
func (t *Tiers) Cleanup() (Removed, error) {
	var r Removed
	if !t.Enabled() {
		return r, nil
	}
	var g errgroup.Group
	g.Go(func() (err error) {
		r.AST, err = t.AST.Cleanup()
		return err
	})
	g.Go(func() (err error) {
		r.Model, err = t.Model.Cleanup()
		return err
	})
	return r, g.Wait()
}

// Stats reports entries, bytes and traffic of both tiers.
func (t *Tiers) Stats() (Stats, error) {
	var s Stats
	if !t.Enabled() {
		return s, nil
	}
	var g errgroup.Group
	g.Go(func() (err error) {
		s.AST, err = t.AST.Usage()
		return err
	})
	g.Go(func() (err error) {
		s.Model, err = t.Model.Usage()
		return err
	})
	return s, g.Wait()
}
