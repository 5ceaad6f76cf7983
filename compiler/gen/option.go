package gen

import (
	"errors"
	"log/slog"
	"slices"
)

// Config holds the settings shared by the model builder and the schema
// generator.
type Config struct {
	// Features are the enabled feature-flags.
	Features []Feature
	// Resolvers lists the "Type.field" names that have a user resolver.
	Resolvers []string
	// Logger receives build warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures the model builder and the schema generator.
type Option func(*Config) error

// WithFeatures enables specific features.
// Features control optional schema generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		for _, f := range features {
			if _, ok := featureByName(f.Name); !ok {
				return NewConfigError("Features", f.Name, "unknown feature")
			}
		}
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name, as read from configuration
// files.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, ok := featureByName(name)
			if !ok {
				return NewConfigError("Features", name, "unknown feature")
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithResolvers records the fields that have user resolvers, given as
// "Type.field" names.
func WithResolvers(names ...string) Option {
	return func(c *Config) error {
		c.Resolvers = append(c.Resolvers, names...)
		return nil
	}
}

// WithLogger sets the logger used for build warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FeatureEnabled reports whether the named feature is enabled, either
// explicitly or by default.
func (c *Config) FeatureEnabled(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	f, ok := featureByName(name)
	return ok && f.Default
}

// HasResolver reports whether a user resolver is registered for the field.
func (c *Config) HasResolver(typeName, field string) bool {
	return slices.Contains(c.Resolvers, typeName+"."+field)
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
