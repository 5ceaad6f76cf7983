package graphdef

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/syssam/graphdef/compiler/cache"
	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
	"github.com/syssam/graphdef/subscription"
)

// CacheConfig configures the compilation cache. It mirrors the cache
// section of the configuration file.
type CacheConfig struct {
	// Enabled defaults to true when a CacheConfig is supplied.
	Enabled *bool `yaml:"enabled"`
	// Level is "ast", "model" or "both" (default).
	Level string `yaml:"level"`
	// Directory defaults to ".graphdef-cache".
	Directory string `yaml:"directory"`
	// TTL is the lifetime of new entries in milliseconds. Zero keeps
	// entries forever.
	TTL int64 `yaml:"ttl"`
	// Serialization is "json" (default) or "msgpack".
	Serialization string `yaml:"serialization"`
}

func (c CacheConfig) internal() cache.Config {
	return cache.Config{
		Enabled:       c.Enabled == nil || *c.Enabled,
		Level:         cache.Level(c.Level),
		Directory:     c.Directory,
		TTL:           time.Duration(c.TTL) * time.Millisecond,
		Serialization: c.Serialization,
	}
}

type config struct {
	cache      *CacheConfig
	resolvers  resolver.Map
	exec       dialect.Executor
	drv        dialect.Driver
	authorizer resolver.Authorizer
	engine     subscription.Engine
	features   []gen.Feature
	logger     *slog.Logger
	registry   prometheus.Registerer
}

// Option configures a GraphQL instance.
type Option func(*config) error

// WithCache enables the compilation cache. Without it no file is read or
// written.
func WithCache(c CacheConfig) Option {
	return func(cfg *config) error {
		if c.TTL < 0 {
			return gen.NewConfigError("Cache", c.TTL, "ttl cannot be negative")
		}
		if c.Level != "" && !cache.Level(c.Level).Valid() {
			return gen.NewConfigError("Cache", c.Level, "level must be ast, model or both")
		}
		cfg.cache = &c
		return nil
	}
}

// WithResolvers adds user resolvers. They win over generated resolvers of
// the same field, and fields of node types with a resolver are left out of
// filters, sorts and inputs.
func WithResolvers(m resolver.Map) Option {
	return func(cfg *config) error {
		if cfg.resolvers == nil {
			cfg.resolvers = resolver.Map{}
		}
		for typ, fields := range m {
			for field, fn := range fields {
				cfg.resolvers.Set(typ, field, fn)
			}
		}
		return nil
	}
}

// WithExecutor sets the executor generated resolvers translate to.
func WithExecutor(exec dialect.Executor) Option {
	return func(cfg *config) error {
		cfg.exec = exec
		return nil
	}
}

// WithDriver sets the driver opening database sessions.
func WithDriver(drv dialect.Driver) Option {
	return func(cfg *config) error {
		cfg.drv = drv
		return nil
	}
}

// WithAuthorizer replaces the default authorizer, which enforces the
// @authentication and @authorization rules of the type definitions.
func WithAuthorizer(a resolver.Authorizer) Option {
	return func(cfg *config) error {
		if a == nil {
			return gen.NewConfigError("Authorizer", nil, "authorizer cannot be nil")
		}
		cfg.authorizer = a
		return nil
	}
}

// WithSubscriptions sets the event engine. Subscription root fields and
// event types are generated only with an engine.
func WithSubscriptions(engine subscription.Engine) Option {
	return func(cfg *config) error {
		if engine == nil {
			return gen.NewConfigError("Subscriptions", nil, "engine cannot be nil")
		}
		cfg.engine = engine
		return nil
	}
}

// WithFeatures enables generation features.
func WithFeatures(features ...gen.Feature) Option {
	return func(cfg *config) error {
		cfg.features = append(cfg.features, features...)
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return gen.NewConfigError("Logger", nil, "logger cannot be nil")
		}
		cfg.logger = l
		return nil
	}
}

// WithMetrics registers the cache counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cfg *config) error {
		cfg.registry = reg
		return nil
	}
}
