package privacy

import (
	"context"
	"slices"
	"strings"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/resolver"
)

// jwtPrefix marks a rule value referring to a viewer claim.
const jwtPrefix = "$jwt."

// Operation returns the rule operation name of an operation kind.
func Operation(kind dialect.OpKind) string {
	switch kind {
	case dialect.OpAggregate:
		return gen.OperationAggregate
	case dialect.OpCreate:
		return gen.OperationCreate
	case dialect.OpUpdate:
		return gen.OperationUpdate
	case dialect.OpDelete:
		return gen.OperationDelete
	case dialect.OpSubscribe:
		return gen.OperationSubscribe
	default:
		return gen.OperationRead
	}
}

// PolicyAuthorizer enforces the policies of a model at request time.
// Programmatic policies run first; then, for every entity the operation
// touches, the entity's @authentication requirement is checked and its
// @authorization rules are turned into filter and validation predicates
// on the operation.
type PolicyAuthorizer struct {
	g        *gen.Graph
	policies Policies
}

// AuthorizerOption configures a PolicyAuthorizer.
type AuthorizerOption func(*PolicyAuthorizer)

// WithPolicy adds programmatic policies evaluated before the model rules.
func WithPolicy(policies ...Policy) AuthorizerOption {
	return func(a *PolicyAuthorizer) {
		a.policies = append(a.policies, policies...)
	}
}

// NewPolicyAuthorizer returns an authorizer for the policies of g.
func NewPolicyAuthorizer(g *gen.Graph, opts ...AuthorizerOption) *PolicyAuthorizer {
	a := &PolicyAuthorizer{g: g}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize implements resolver.Authorizer. A decision attached to ctx
// with DecisionContext replaces the evaluation.
func (a *PolicyAuthorizer) Authorize(ctx context.Context, op *dialect.Operation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	if err := a.policies.Eval(ctx, op); err != nil {
		return err
	}
	if a.g == nil {
		return nil
	}
	operation := Operation(op.Kind)
	viewer := ViewerFromContext(ctx)
	for _, name := range touched(op) {
		t, ok := a.g.Node(name)
		if !ok || t.Policy == nil {
			continue
		}
		if err := authenticate(t, operation, viewer); err != nil {
			return err
		}
		filter, validate := t.Policy.Rules(operation)
		if p, ok := filterPredicate(name, filter, viewer); ok {
			op.Filters = append(op.Filters, p)
		}
		for _, r := range validate {
			where, err := validation(name, operation, r, viewer)
			if err != nil {
				return err
			}
			if where != nil {
				op.Validate = append(op.Validate, dialect.Predicate{Entity: name, Where: where})
			}
		}
	}
	return nil
}

// touched returns the entities an operation reads or writes.
func touched(op *dialect.Operation) []string {
	if len(op.Members) > 0 {
		return op.Members
	}
	if op.Entity == "" {
		return nil
	}
	return []string{op.Entity}
}

func authenticate(t *gen.Type, operation string, viewer Viewer) error {
	auth := t.Policy.Authentication
	if !auth.Requires(operation) {
		return nil
	}
	if viewer == nil {
		return Denyf("privacy: %s on %s requires authentication", operation, t.Name)
	}
	if !claimsMatch(auth.JWT, viewer) {
		return Denyf("privacy: %s on %s: viewer claims do not match", operation, t.Name)
	}
	return nil
}

// filterPredicate combines the filter rules of an entity. Rules are
// alternatives: a rule the viewer satisfies without node conditions lifts
// the filter, rules the viewer cannot satisfy are dropped, and when none
// remains the predicate is an empty OR, which matches no node.
func filterPredicate(entity string, rules []*gen.AuthorizationRule, viewer Viewer) (dialect.Predicate, bool) {
	if len(rules) == 0 {
		return dialect.Predicate{}, false
	}
	alts := []any{}
	for _, r := range rules {
		if r.RequireAuthentication && viewer == nil {
			continue
		}
		if !claimsMatch(r.JWT, viewer) {
			continue
		}
		where, ok := nodeWhere(r.Node, viewer)
		if !ok {
			continue
		}
		if where == nil {
			return dialect.Predicate{}, false
		}
		alts = append(alts, where)
	}
	if len(alts) == 1 {
		return dialect.Predicate{Entity: entity, Where: alts[0].(map[string]any)}, true
	}
	return dialect.Predicate{Entity: entity, Where: map[string]any{"OR": alts}}, true
}

// validation checks the viewer part of a validation rule and returns the
// node condition left for the executor.
func validation(entity, operation string, r *gen.AuthorizationRule, viewer Viewer) (map[string]any, error) {
	if r.RequireAuthentication && viewer == nil {
		return nil, Denyf("privacy: %s on %s requires authentication", operation, entity)
	}
	if !claimsMatch(r.JWT, viewer) {
		return nil, Denyf("privacy: %s on %s: viewer claims do not match", operation, entity)
	}
	where, ok := nodeWhere(r.Node, viewer)
	if !ok {
		return nil, Denyf("privacy: %s on %s: unresolved viewer claim", operation, entity)
	}
	return where, nil
}

// nodeWhere converts the node conditions of a rule into a where filter.
// Scalars become equality filters; claim references are resolved against
// the viewer. It reports false when a referenced claim is missing.
func nodeWhere(node map[string]*gen.Value, viewer Viewer) (map[string]any, bool) {
	if len(node) == 0 {
		return nil, true
	}
	where := make(map[string]any, len(node))
	for attr, v := range node {
		val, ok := resolve(v.Interface(), viewer)
		if !ok {
			return nil, false
		}
		if _, isMap := val.(map[string]any); !isMap {
			val = map[string]any{"eq": val}
		}
		where[attr] = val
	}
	return where, true
}

// resolve substitutes claim references in a rule value.
func resolve(v any, viewer Viewer) (any, bool) {
	switch v := v.(type) {
	case string:
		if !strings.HasPrefix(v, jwtPrefix) {
			return v, true
		}
		return Claim(viewer, strings.TrimPrefix(v, jwtPrefix))
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, c := range v {
			r, ok := resolve(c, viewer)
			if !ok {
				return nil, false
			}
			out[k] = r
		}
		return out, true
	case []any:
		out := make([]any, len(v))
		for i, c := range v {
			r, ok := resolve(c, viewer)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
		return out, true
	}
	return v, true
}

// claimsMatch reports whether the viewer carries every required claim. A
// list claim matches when it contains the required value.
func claimsMatch(required map[string]*gen.Value, viewer Viewer) bool {
	if len(required) == 0 {
		return true
	}
	if viewer == nil {
		return false
	}
	for path, want := range required {
		got, ok := Claim(viewer, path)
		if !ok {
			return false
		}
		expected := stringify(want.Interface())
		switch got := got.(type) {
		case []string:
			if !slices.Contains(got, expected) {
				return false
			}
		case []any:
			if !slices.ContainsFunc(got, func(v any) bool { return stringify(v) == expected }) {
				return false
			}
		default:
			if stringify(got) != expected {
				return false
			}
		}
	}
	return true
}

var _ resolver.Authorizer = (*PolicyAuthorizer)(nil)
