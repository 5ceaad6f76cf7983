package gen

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/schema"
)

// Operation names used by authentication and authorization rules.
const (
	OperationRead               = "READ"
	OperationAggregate          = "AGGREGATE"
	OperationCreate             = "CREATE"
	OperationUpdate             = "UPDATE"
	OperationDelete             = "DELETE"
	OperationCreateRelationship = "CREATE_RELATIONSHIP"
	OperationDeleteRelationship = "DELETE_RELATIONSHIP"
	OperationSubscribe          = "SUBSCRIBE"
)

var (
	authenticationOperations = []string{
		OperationRead, OperationAggregate, OperationCreate, OperationUpdate,
		OperationDelete, OperationCreateRelationship, OperationDeleteRelationship, OperationSubscribe,
	}
	authorizationOperations = authenticationOperations
)

// Policy holds the access rules of an entity. The rules are evaluated by
// an authorizer at request time; the model only carries them.
type Policy struct {
	Authentication *Authentication      `json:"authentication,omitempty"`
	Filter         []*AuthorizationRule `json:"filter,omitempty"`
	Validate       []*AuthorizationRule `json:"validate,omitempty"`
}

// Authentication requires an authenticated viewer for the listed
// operations.
type Authentication struct {
	Operations []string `json:"operations"`
	// JWT holds required claim values.
	JWT map[string]*Value `json:"jwt,omitempty"`
}

// AuthorizationRule is one filter or validation rule.
type AuthorizationRule struct {
	Operations            []string `json:"operations"`
	RequireAuthentication bool     `json:"requireAuthentication"`
	// Node maps entity attributes to required values. A string value of
	// the form "$jwt.claim" refers to a viewer claim.
	Node map[string]*Value `json:"node,omitempty"`
	// JWT maps viewer claims to required values.
	JWT map[string]*Value `json:"jwt,omitempty"`
}

// Applies reports whether the rule covers op.
func (r *AuthorizationRule) Applies(op string) bool {
	return slices.Contains(r.Operations, op)
}

// Requires reports whether authentication is required for op.
func (a *Authentication) Requires(op string) bool {
	return a != nil && slices.Contains(a.Operations, op)
}

// Rules returns the filter and validation rules covering op.
func (p *Policy) Rules(op string) (filter, validate []*AuthorizationRule) {
	if p == nil {
		return nil, nil
	}
	for _, r := range p.Filter {
		if r.Applies(op) {
			filter = append(filter, r)
		}
	}
	for _, r := range p.Validate {
		if r.Applies(op) {
			validate = append(validate, r)
		}
	}
	return filter, validate
}

// parsePolicy resolves the @authentication and @authorization directives
// of an entity. Rule operations are checked against the known set and
// node conditions must name attributes of the entity.
func parsePolicy(t *Type, def *ast.Definition) (*Policy, error) {
	var p Policy
	if d := def.Directives.ForName(schema.DirectiveAuthentication); d != nil {
		ops, ok, err := argEnumList(d, "operations")
		if err != nil {
			return nil, NewSchemaError(t.Name, "", err.Error(), nil)
		}
		if !ok {
			ops = []string{OperationRead, OperationAggregate, OperationCreate, OperationUpdate, OperationDelete}
		}
		if err := checkOperations(ops, authenticationOperations); err != nil {
			return nil, NewSchemaError(t.Name, "", "@authentication", err)
		}
		p.Authentication = &Authentication{Operations: ops}
		if arg := d.Arguments.ForName("jwt"); arg != nil && arg.Value != nil {
			if p.Authentication.JWT, err = objectMap(arg.Value, "@authentication(jwt:)"); err != nil {
				return nil, NewSchemaError(t.Name, "", err.Error(), nil)
			}
		}
	}
	if d := def.Directives.ForName(schema.DirectiveAuthorization); d != nil {
		var err error
		if p.Filter, err = parseRules(t, d, "filter"); err != nil {
			return nil, err
		}
		if p.Validate, err = parseRules(t, d, "validate"); err != nil {
			return nil, err
		}
	}
	if p.Authentication == nil && len(p.Filter) == 0 && len(p.Validate) == 0 {
		return nil, nil
	}
	return &p, nil
}

func parseRules(t *Type, d *ast.Directive, name string) ([]*AuthorizationRule, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || arg.Value.Kind == ast.NullValue {
		return nil, nil
	}
	what := "@authorization(" + name + ":)"
	items := []*ast.Value{arg.Value}
	if arg.Value.Kind == ast.ListValue {
		items = items[:0]
		for _, c := range arg.Value.Children {
			items = append(items, c.Value)
		}
	}
	rules := make([]*AuthorizationRule, 0, len(items))
	for _, item := range items {
		if item == nil || item.Kind != ast.ObjectValue {
			return nil, NewSchemaError(t.Name, "", what+" rules must be objects", nil)
		}
		r := &AuthorizationRule{Operations: slices.Clone(authorizationOperations), RequireAuthentication: true}
		for _, c := range item.Children {
			switch c.Name {
			case "operations":
				ops, _, err := enumList(c.Value, what+" operations")
				if err == nil {
					err = checkOperations(ops, authorizationOperations)
				}
				if err != nil {
					return nil, NewSchemaError(t.Name, "", what, err)
				}
				r.Operations = ops
			case "requireAuthentication":
				if c.Value.Kind != ast.BooleanValue {
					return nil, NewSchemaError(t.Name, "", what+" requireAuthentication must be a Boolean", nil)
				}
				r.RequireAuthentication = c.Value.Raw == "true"
			case "where":
				if err := parseWhere(t, r, c.Value, what); err != nil {
					return nil, err
				}
			default:
				return nil, NewSchemaError(t.Name, "", fmt.Sprintf("%s unknown rule argument %s", what, c.Name), nil)
			}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func parseWhere(t *Type, r *AuthorizationRule, v *ast.Value, what string) error {
	if v.Kind != ast.ObjectValue {
		return NewSchemaError(t.Name, "", what+" where must be an object", nil)
	}
	for _, c := range v.Children {
		m, err := objectMap(c.Value, what+" where."+c.Name)
		if err != nil {
			return NewSchemaError(t.Name, "", err.Error(), nil)
		}
		switch c.Name {
		case "node":
			for _, cond := range c.Value.Children {
				if _, ok := t.FieldByName(cond.Name); !ok {
					return NewSchemaError(t.Name, cond.Name, what+" where.node refers to an unknown attribute", nil)
				}
			}
			r.Node = m
		case "jwt":
			r.JWT = m
		default:
			return NewSchemaError(t.Name, "", fmt.Sprintf("%s where has unknown key %s", what, c.Name), nil)
		}
	}
	return nil
}

func objectMap(v *ast.Value, what string) (map[string]*Value, error) {
	if v.Kind != ast.ObjectValue {
		return nil, fmt.Errorf("%s must be an object", what)
	}
	m := make(map[string]*Value, len(v.Children))
	for _, c := range v.Children {
		m[c.Name] = valueOf(c.Value)
	}
	return m, nil
}

func checkOperations(ops, known []string) error {
	for _, op := range ops {
		if !slices.Contains(known, op) {
			return fmt.Errorf("unknown operation %s", op)
		}
	}
	return nil
}
