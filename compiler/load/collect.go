package load

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Collection indexes the top-level definitions of a normalized document by
// kind and name. It is built once per compilation and is read-only.
type Collection struct {
	Objects    map[string]*ast.Definition
	Interfaces map[string]*ast.Definition
	Unions     map[string]*ast.Definition
	Enums      map[string]*ast.Definition
	Scalars    map[string]*ast.Definition
	Inputs     map[string]*ast.Definition
	Directives map[string]*ast.DirectiveDefinition
	// Order holds every definition name in declaration order.
	Order []string
	// Root operation type names. They default to Query, Mutation and
	// Subscription unless a schema definition overrides them.
	Query, Mutation, Subscription string
}

// Collect partitions the definitions of doc. Objects, enums, scalars and
// input objects that are declared twice resolve to the last declaration.
// Duplicate interfaces or unions, and names shared between two kinds, are
// structural errors.
func Collect(doc *ast.SchemaDocument) (*Collection, error) {
	c := &Collection{
		Objects:      make(map[string]*ast.Definition),
		Interfaces:   make(map[string]*ast.Definition),
		Unions:       make(map[string]*ast.Definition),
		Enums:        make(map[string]*ast.Definition),
		Scalars:      make(map[string]*ast.Definition),
		Inputs:       make(map[string]*ast.Definition),
		Directives:   make(map[string]*ast.DirectiveDefinition),
		Query:        "Query",
		Mutation:     "Mutation",
		Subscription: "Subscription",
	}
	if doc == nil {
		return c, nil
	}
	kinds := make(map[string]ast.DefinitionKind, len(doc.Definitions))
	for _, def := range doc.Definitions {
		if def.Name == "" {
			return nil, &DefinitionError{Kind: def.Kind, Message: "definition without a name", Position: def.Position}
		}
		if prev, ok := kinds[def.Name]; ok && prev != def.Kind {
			return nil, &DefinitionError{
				Name:     def.Name,
				Kind:     def.Kind,
				Message:  "name already declared as " + string(prev),
				Position: def.Position,
			}
		}
		var index map[string]*ast.Definition
		switch def.Kind {
		case ast.Object:
			index = c.Objects
		case ast.Interface:
			index = c.Interfaces
		case ast.Union:
			index = c.Unions
		case ast.Enum:
			index = c.Enums
		case ast.Scalar:
			index = c.Scalars
		case ast.InputObject:
			index = c.Inputs
		default:
			return nil, &DefinitionError{Name: def.Name, Kind: def.Kind, Message: "unknown definition kind", Position: def.Position}
		}
		if _, dup := index[def.Name]; dup {
			if def.Kind == ast.Interface || def.Kind == ast.Union {
				return nil, &DefinitionError{Name: def.Name, Kind: def.Kind, Message: "declared more than once", Position: def.Position}
			}
		} else {
			c.Order = append(c.Order, def.Name)
		}
		index[def.Name] = def
		kinds[def.Name] = def.Kind
	}
	for _, d := range doc.Directives {
		c.Directives[d.Name] = d
	}
	for _, sd := range doc.Schema {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case ast.Query:
				c.Query = op.Type
			case ast.Mutation:
				c.Mutation = op.Type
			case ast.Subscription:
				c.Subscription = op.Type
			}
		}
	}
	return c, nil
}

// IsRoot reports whether name is one of the root operation types.
func (c *Collection) IsRoot(name string) bool {
	return name == c.Query || name == c.Mutation || name == c.Subscription
}

// Kind returns the definition kind registered for name.
func (c *Collection) Kind(name string) (ast.DefinitionKind, bool) {
	switch {
	case c.Objects[name] != nil:
		return ast.Object, true
	case c.Interfaces[name] != nil:
		return ast.Interface, true
	case c.Unions[name] != nil:
		return ast.Union, true
	case c.Enums[name] != nil:
		return ast.Enum, true
	case c.Scalars[name] != nil:
		return ast.Scalar, true
	case c.Inputs[name] != nil:
		return ast.InputObject, true
	}
	return "", false
}

// Definition returns the definition registered for name, of any kind.
func (c *Collection) Definition(name string) *ast.Definition {
	for _, index := range []map[string]*ast.Definition{c.Objects, c.Interfaces, c.Unions, c.Enums, c.Scalars, c.Inputs} {
		if def, ok := index[name]; ok {
			return def
		}
	}
	return nil
}
