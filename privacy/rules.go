package privacy

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/graphdef/dialect"
)

// Viewer represents the authenticated user making a request.
// This interface should be implemented by application-specific user types.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier for multi-tenancy.
	// Returns empty string if not applicable.
	GetTenantID() string
}

// ClaimsViewer is implemented by viewers carrying token claims. Claims are
// referenced by @authentication(jwt:) and @authorization rules.
type ClaimsViewer interface {
	Viewer
	GetClaims() map[string]any
}

// viewerCtxKey is the context key for storing the viewer.
type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context.
// Returns nil if no viewer is present.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
// Use this for testing or simple use cases.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
	Claims   map[string]any
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string {
	return v.UserID
}

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string {
	return v.Roles
}

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string {
	return v.TenantID
}

// GetClaims returns the token claims.
func (v *SimpleViewer) GetClaims() map[string]any {
	return v.Claims
}

// Claim returns the claim at a dotted path, e.g. "org.id". The sub and
// roles claims fall back to the viewer ID and roles.
func Claim(v Viewer, path string) (any, bool) {
	if v == nil {
		return nil, false
	}
	if cv, ok := v.(ClaimsViewer); ok {
		var cur any = cv.GetClaims()
		found := true
		for _, key := range strings.Split(path, ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				found = false
				break
			}
			if cur, ok = m[key]; !ok {
				found = false
				break
			}
		}
		if found {
			return cur, true
		}
	}
	switch path {
	case "sub":
		return v.GetID(), true
	case "roles":
		return v.GetRoles(), true
	}
	return nil, false
}

// DenyIfNoViewer returns a rule that denies access if no viewer is present in the context.
// This is typically used as the first rule in a policy to require authentication.
//
// Example:
//
//	privacy.Policy{Mutation: privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}}
func DenyIfNoViewer() QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows access if the viewer has the specified role.
// Skips if the viewer doesn't have the role.
func HasRole(role string) QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		if slices.Contains(viewer.GetRoles(), role) {
			return Allow
		}
		return Skip
	})
}

// HasAnyRole returns a rule that allows access if the viewer has any of the specified roles.
// Skips if the viewer doesn't have any of the roles.
func HasAnyRole(roles ...string) QueryMutationRule {
	return ContextQueryMutationRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		viewerRoles := viewer.GetRoles()
		for _, role := range roles {
			if slices.Contains(viewerRoles, role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule restricting an operation to the nodes whose field
// equals the viewer's ID. Without a viewer it skips; pair it with
// DenyIfNoViewer to require one.
//
// Example:
//
//	privacy.Policy{Mutation: privacy.MutationPolicy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.IsOwner("ownerId"),
//	}}
func IsOwner(field string) QueryMutationRule {
	return FilterFunc(func(ctx context.Context, _ *dialect.Operation) (map[string]any, error) {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return nil, nil
		}
		return map[string]any{field: map[string]any{"eq": viewer.GetID()}}, nil
	})
}

// OwnerQueryRule returns a query rule that denies queries without a
// viewer. Use it as a guard in front of IsOwner.
func OwnerQueryRule() QueryRule {
	return QueryRuleFunc(func(ctx context.Context, _ *dialect.Operation) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required for owner-filtered query")
		}
		return Skip
	})
}

// TenantRule returns a rule restricting an operation to the nodes of the
// viewer's tenant. It denies when the viewer has no tenant.
func TenantRule(field string) QueryMutationRule {
	return FilterFunc(func(ctx context.Context, _ *dialect.Operation) (map[string]any, error) {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return nil, nil
		}
		tenant := viewer.GetTenantID()
		if tenant == "" {
			return nil, Denyf("privacy: tenant required")
		}
		return map[string]any{field: map[string]any{"eq": tenant}}, nil
	})
}

// TenantQueryRule returns a query rule that denies queries if no viewer
// or tenant is present. Use this as a guard for tenant-filtered queries.
func TenantQueryRule() QueryRule {
	return QueryRuleFunc(func(ctx context.Context, _ *dialect.Operation) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("privacy: viewer required for tenant-filtered query")
		}
		if viewer.GetTenantID() == "" {
			return Denyf("privacy: tenant required")
		}
		return Skip
	})
}

// OnEntity evaluates rule only for operations on the named entity.
func OnEntity(entity string, rule QueryMutationRule) QueryMutationRule {
	return entityRule{entity: entity, rule: rule}
}

type entityRule struct {
	entity string
	rule   QueryMutationRule
}

func (r entityRule) EvalQuery(ctx context.Context, op *dialect.Operation) error {
	if op.Entity != r.entity {
		return Skipf("privacy: rule for %s", r.entity)
	}
	return r.rule.EvalQuery(ctx, op)
}

func (r entityRule) EvalMutation(ctx context.Context, op *dialect.Operation) error {
	if op.Entity != r.entity {
		return Skipf("privacy: rule for %s", r.entity)
	}
	return r.rule.EvalMutation(ctx, op)
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
