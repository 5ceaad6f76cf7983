package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/graphdef/dialect"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("graphdef/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("graphdef/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("graphdef/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

// ContextQueryMutationRule creates a query/mutation rule from a context evaluation function.
// The provided function receives the context and should return Allow, Deny, Skip, or nil.
// Returning nil is equivalent to returning Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

type (
	// QueryRule decides whether a reading operation (read, aggregate,
	// connection, cypher, entities or subscribe) is allowed. It may narrow
	// the operation by appending filters.
	QueryRule interface {
		EvalQuery(context.Context, *dialect.Operation) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule decides whether a create, update or delete operation
	// is allowed.
	MutationRule interface {
		EvalMutation(context.Context, *dialect.Operation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule is an interface which groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc type is an adapter which allows the use of
// ordinary functions as query rules.
type QueryRuleFunc func(context.Context, *dialect.Operation) error

// EvalQuery returns f(ctx, op).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, op *dialect.Operation) error {
	return f(ctx, op)
}

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, *dialect.Operation) error

// EvalMutation returns f(ctx, op).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, op *dialect.Operation) error {
	return f(ctx, op)
}

// OnMutationOperation evaluates the given rule only on a given mutation kind.
func OnMutationOperation(rule MutationRule, kind dialect.OpKind) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, op *dialect.Operation) error {
		if op.Kind == kind {
			return rule.EvalMutation(ctx, op)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying specified mutation kind.
func DenyMutationOperationRule(kind dialect.OpKind) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, op *dialect.Operation) error {
		return Denyf("graphdef/privacy: operation %s is not allowed", op.Kind)
	})
	return OnMutationOperation(rule, kind)
}

// AllowMutationOperationRule returns a rule allowing specified mutation kind.
func AllowMutationOperationRule(kind dialect.OpKind) MutationRule {
	rule := MutationRuleFunc(func(context.Context, *dialect.Operation) error {
		return Allow
	})
	return OnMutationOperation(rule, kind)
}

// Policy groups query and mutation policies.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// Eval dispatches op to the query or the mutation policy by its kind.
func (p Policy) Eval(ctx context.Context, op *dialect.Operation) error {
	if op.Kind.Mutating() {
		return p.Mutation.EvalMutation(ctx, op)
	}
	return p.Query.EvalQuery(ctx, op)
}

// Policies combines multiple policies into a single policy.
type Policies []Policy

// Eval evaluates the policies in order. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
// A decision attached to ctx with DecisionContext short-circuits the
// evaluation.
func (policies Policies) Eval(ctx context.Context, op *dialect.Operation) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := policy.Eval(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// EvalQuery evaluates an operation against a query policy.
func (policies QueryPolicy) EvalQuery(ctx context.Context, op *dialect.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates an operation against a mutation policy.
func (policies MutationPolicy) EvalMutation(ctx context.Context, op *dialect.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, *dialect.Operation) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, *dialect.Operation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ *dialect.Operation) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ *dialect.Operation) error {
	return c.eval(ctx)
}

// FilterFunc is an adapter that allows using ordinary functions as
// query/mutation rules that narrow an operation. The function returns the
// where condition the affected nodes of op.Entity must satisfy, or nil to
// leave the operation unchanged. The condition is appended to the
// operation's filters, and to its validation predicates for mutations.
//
//	privacy.FilterFunc(func(ctx context.Context, op *dialect.Operation) (map[string]any, error) {
//	    return map[string]any{"workspace": map[string]any{"eq": workspaceID(ctx)}}, nil
//	})
type FilterFunc func(context.Context, *dialect.Operation) (map[string]any, error)

// EvalQuery appends the filter of f to op.
func (f FilterFunc) EvalQuery(ctx context.Context, op *dialect.Operation) error {
	return f.apply(ctx, op)
}

// EvalMutation appends the filter of f to op.
func (f FilterFunc) EvalMutation(ctx context.Context, op *dialect.Operation) error {
	return f.apply(ctx, op)
}

func (f FilterFunc) apply(ctx context.Context, op *dialect.Operation) error {
	where, err := f(ctx, op)
	if err != nil {
		return err
	}
	if where == nil {
		return Skip
	}
	p := dialect.Predicate{Entity: op.Entity, Where: where}
	op.Filters = append(op.Filters, p)
	if op.Kind.Mutating() {
		op.Validate = append(op.Validate, p)
	}
	return Skip
}

var _ QueryMutationRule = FilterFunc(nil)
