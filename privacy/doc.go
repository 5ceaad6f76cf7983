// Package privacy enforces access rules on generated operations.
//
// Rules see the *dialect.Operation a root field is about to run and
// return a decision:
//
//   - Allow: grants access and stops evaluation
//   - Deny: denies access and stops evaluation
//   - Skip: continues to the next rule
//
// If all rules return Skip, the operation is allowed. Rules may also narrow
// an operation instead of deciding: FilterFunc, IsOwner and TenantRule
// append where predicates that the executor applies to the affected nodes.
//
// # Model Policies
//
// PolicyAuthorizer is the default authorizer of a schema. It enforces the
// @authentication and @authorization directives recorded in the model:
//
//	type Post @node
//	    @authentication(operations: [CREATE, UPDATE, DELETE])
//	    @authorization(filter: [{ where: { node: { author: "$jwt.sub" } } }]) {
//	  title: String!
//	  author: String!
//	}
//
// Authentication failures and unsatisfied validation rules are Deny
// decisions. Filter rules become a predicate on the operation: a viewer
// satisfying none of them sees no nodes.
//
// # Programmatic Policies
//
//	authz := privacy.NewPolicyAuthorizer(model, privacy.WithPolicy(privacy.Policy{
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.IsOwner("ownerId"),
//	    },
//	}))
//
// # Viewer
//
// The viewer is stored in the request context:
//
//	ctx := privacy.WithViewer(ctx, &privacy.SimpleViewer{
//	    UserID: "user-123",
//	    Roles:  []string{"user"},
//	    Claims: map[string]any{"org": map[string]any{"id": "acme"}},
//	})
//
// Rule values of the form "$jwt.org.id" refer to viewer claims. The sub and
// roles claims default to the viewer ID and roles.
package privacy
