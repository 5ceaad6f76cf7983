package gqlmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"
)

// GQLGenConfig is the part of gqlgen.yml that model binding touches.
// Keys not listed here are dropped on save, so callers that own other
// settings keep them in a separate file or edit the YAML by hand.
type GQLGenConfig struct {
	SchemaFilename StringList              `yaml:"schema,omitempty"`
	Exec           PackageConfig           `yaml:"exec,omitempty"`
	Model          PackageConfig           `yaml:"model,omitempty"`
	Resolver       ResolverConfig          `yaml:"resolver,omitempty"`
	Autobind       []string                `yaml:"autobind,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`
}

// PackageConfig names a generated file and its package.
type PackageConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
}

// ResolverConfig configures the resolver stubs gqlgen writes.
type ResolverConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
	Layout   string `yaml:"layout,omitempty"`
	DirName  string `yaml:"dir,omitempty"`
}

// TypeMapEntry binds one GraphQL type.
type TypeMapEntry struct {
	Model  StringList              `yaml:"model,omitempty"`
	Fields map[string]TypeMapField `yaml:"fields,omitempty"`
}

// TypeMapField binds one field of a type.
type TypeMapField struct {
	Resolver  bool   `yaml:"resolver,omitempty"`
	FieldName string `yaml:"fieldName,omitempty"`
}

// StringList decodes either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadGQLGenConfig reads a gqlgen.yml file. A missing file yields an empty
// configuration.
func LoadGQLGenConfig(path string) (*GQLGenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GQLGenConfig{
				Models: make(map[string]TypeMapEntry),
			}, nil
		}
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}

	var cfg GQLGenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}

	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}

	return &cfg, nil
}

// SaveGQLGenConfig saves a gqlgen.yml configuration file.
func SaveGQLGenConfig(path string, cfg *GQLGenConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath adds a schema path to the configuration if not already present.
func (c *GQLGenConfig) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// AddAutobind adds a package to the autobind list if not already present.
func (c *GQLGenConfig) AddAutobind(pkg string) {
	if !slices.Contains(c.Autobind, pkg) {
		c.Autobind = append(c.Autobind, pkg)
	}
}

// SetModel sets the model binding for a GraphQL type.
func (c *GQLGenConfig) SetModel(typeName string, modelPath string) {
	entry := c.Models[typeName]
	if !slices.Contains(entry.Model, modelPath) {
		entry.Model = append(entry.Model, modelPath)
	}
	c.Models[typeName] = entry
}

// scalarModels binds the catalog scalars to gqlgen's marshalers.
var scalarModels = map[string]string{
	"ID":            "github.com/99designs/gqlgen/graphql.ID",
	"BigInt":        "github.com/99designs/gqlgen/graphql.Int64",
	"DateTime":      "github.com/99designs/gqlgen/graphql.Time",
	"LocalDateTime": "github.com/99designs/gqlgen/graphql.Time",
	"Date":          "github.com/99designs/gqlgen/graphql.Time",
	"_Any":          "github.com/99designs/gqlgen/graphql.Map",
}

// BindModels points gqlgen at the generated schema and the models emitted
// by Models into modelPackage. Every model type of doc is bound
// explicitly, so the configuration does not depend on autobind name
// matching.
func (c *GQLGenConfig) BindModels(doc *ast.SchemaDocument, modelPackage, schemaPath string) {
	if modelPackage == "" {
		return
	}
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	c.AddAutobind(modelPackage)
	m := newModeler(doc)
	for _, d := range doc.Definitions {
		switch {
		case d.Kind == ast.Scalar:
			if model, ok := scalarModels[d.Name]; ok {
				c.SetModel(d.Name, model)
			}
		case m.skip(d):
		default:
			c.SetModel(d.Name, modelPackage+"."+GoName(d.Name))
		}
	}
}
