package graphdef

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/subscription"
)

// File is the layout of a graphdef.yml configuration file:
//
//	typeDefs:
//	  - schema/*.graphql
//	cache:
//	  level: both
//	  directory: .graphdef-cache
//	  ttl: 86400000
//	features:
//	  subscriptions: true
//	  excludeDeprecatedFields: true
type File struct {
	// TypeDefs are type definition files or glob patterns, relative to the
	// configuration file.
	TypeDefs []string     `yaml:"typeDefs"`
	Cache    *CacheConfig `yaml:"cache"`
	Features Features     `yaml:"features"`

	dir string
}

// Features toggles optional generation.
type Features struct {
	// Subscriptions generates subscription fields served by an in-process
	// event engine.
	Subscriptions bool `yaml:"subscriptions"`
	// ExcludeDeprecatedFields drops the deprecated flat filter and
	// mutation fields.
	ExcludeDeprecatedFields bool `yaml:"excludeDeprecatedFields"`
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("graphdef: read config: %w", err)
	}
	f, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// ParseConfig decodes a configuration file. Unknown keys are errors.
func ParseConfig(data []byte) (*File, error) {
	f := &File{dir: "."}
	if len(data) == 0 {
		return f, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		return nil, fmt.Errorf("graphdef: parse config: %w", err)
	}
	return f, nil
}

// Options returns the options the file configures.
func (f *File) Options() []Option {
	var opts []Option
	if f.Cache != nil {
		c := *f.Cache
		if c.Directory != "" && !filepath.IsAbs(c.Directory) {
			c.Directory = filepath.Join(f.dir, c.Directory)
		}
		opts = append(opts, WithCache(c))
	}
	if f.Features.Subscriptions {
		opts = append(opts, WithSubscriptions(subscription.NewMemory()))
	}
	if f.Features.ExcludeDeprecatedFields {
		opts = append(opts, WithFeatures(gen.FeatureExcludeDeprecatedFields))
	}
	return opts
}

// Source returns the type definition files of the configuration. Glob
// patterns are expanded and their matches sorted.
func (f *File) Source() (load.Source, error) {
	if len(f.TypeDefs) == 0 {
		return nil, fmt.Errorf("graphdef: config lists no typeDefs")
	}
	var paths []string
	for _, p := range f.Patterns() {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("graphdef: typeDefs pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("graphdef: typeDefs pattern %q matches no files", p)
		}
		paths = append(paths, matches...)
	}
	return load.Files(paths...), nil
}

// Patterns returns the typeDefs patterns resolved against the directory of
// the configuration file.
func (f *File) Patterns() []string {
	out := make([]string, len(f.TypeDefs))
	for i, p := range f.TypeDefs {
		if !filepath.IsAbs(p) {
			p = filepath.Join(f.dir, p)
		}
		out[i] = p
	}
	return out
}
