package privacy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/compiler/load"
	"github.com/syssam/graphdef/dialect"
	"github.com/syssam/graphdef/privacy"
)

const postsSDL = `
type Post @node
  @authentication(operations: [CREATE, DELETE])
  @authorization(
    filter: [
      { where: { node: { author: "$jwt.sub" } } }
      { requireAuthentication: false, where: { node: { published: true } } }
    ]
    validate: [{ operations: [UPDATE], where: { node: { author: "$jwt.sub" } } }]
  ) {
  title: String!
  author: String!
  published: Boolean
}

type Org @node @authentication(jwt: { roles: "admin" }) {
  name: String!
}

type Note @node @authorization(filter: [{ where: { jwt: { roles: "admin" } } }]) {
  body: String
}

type Tag @node {
  name: String!
}
`

func authorizer(t *testing.T, opts ...privacy.AuthorizerOption) *privacy.PolicyAuthorizer {
	t.Helper()
	doc, err := load.Normalize([]load.Part{{Name: "test.graphql", Text: postsSDL}})
	require.NoError(t, err)
	c, err := load.Collect(doc)
	require.NoError(t, err)
	g, err := gen.NewGraph(c)
	require.NoError(t, err)
	return privacy.NewPolicyAuthorizer(g, opts...)
}

func as(id string, roles ...string) context.Context {
	return privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: id, Roles: roles})
}

func TestOperation(t *testing.T) {
	tests := map[dialect.OpKind]string{
		dialect.OpRead:       gen.OperationRead,
		dialect.OpConnection: gen.OperationRead,
		dialect.OpEntities:   gen.OperationRead,
		dialect.OpAggregate:  gen.OperationAggregate,
		dialect.OpCreate:     gen.OperationCreate,
		dialect.OpUpdate:     gen.OperationUpdate,
		dialect.OpDelete:     gen.OperationDelete,
		dialect.OpSubscribe:  gen.OperationSubscribe,
	}
	for kind, want := range tests {
		assert.Equal(t, want, privacy.Operation(kind), string(kind))
	}
}

func TestPolicyAuthorizerAuthentication(t *testing.T) {
	a := authorizer(t)

	t.Run("required_operation_without_viewer", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpCreate, Entity: "Post"}
		err := a.Authorize(context.Background(), op)
		require.ErrorIs(t, err, privacy.Deny)
		assert.Contains(t, err.Error(), "CREATE on Post requires authentication")
	})

	t.Run("required_operation_with_viewer", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpCreate, Entity: "Post"}
		assert.NoError(t, a.Authorize(as("u1"), op))
	})

	t.Run("jwt_claims", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Org"}
		assert.ErrorIs(t, a.Authorize(as("u1", "user"), op), privacy.Deny)
		assert.NoError(t, a.Authorize(as("u1", "admin"), op))
	})

	t.Run("entity_without_policy", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpDelete, Entity: "Tag"}
		assert.NoError(t, a.Authorize(context.Background(), op))
		assert.Empty(t, op.Filters)
	})
}

func TestPolicyAuthorizerFilters(t *testing.T) {
	a := authorizer(t)

	t.Run("alternatives", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Post"}
		require.NoError(t, a.Authorize(as("u1"), op))
		require.Len(t, op.Filters, 1)
		assert.Equal(t, "Post", op.Filters[0].Entity)
		assert.Equal(t, map[string]any{"OR": []any{
			map[string]any{"author": map[string]any{"eq": "u1"}},
			map[string]any{"published": map[string]any{"eq": true}},
		}}, op.Filters[0].Where)
	})

	t.Run("anonymous_keeps_public_rule", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Post"}
		require.NoError(t, a.Authorize(context.Background(), op))
		require.Len(t, op.Filters, 1)
		assert.Equal(t, map[string]any{"published": map[string]any{"eq": true}}, op.Filters[0].Where)
	})

	t.Run("jwt_only_rule_lifts_filter", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Note"}
		require.NoError(t, a.Authorize(as("u1", "admin"), op))
		assert.Empty(t, op.Filters)
	})

	t.Run("unsatisfied_rules_match_nothing", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Note"}
		require.NoError(t, a.Authorize(as("u1", "user"), op))
		require.Len(t, op.Filters, 1)
		assert.Equal(t, map[string]any{"OR": []any{}}, op.Filters[0].Where)
	})

	t.Run("members", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpRead, Entity: "Content", Members: []string{"Note", "Tag"}}
		require.NoError(t, a.Authorize(as("u1"), op))
		require.Len(t, op.Filters, 1)
		assert.Equal(t, "Note", op.Filters[0].Entity)
	})
}

func TestPolicyAuthorizerValidate(t *testing.T) {
	a := authorizer(t)

	t.Run("validation_predicate", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpUpdate, Entity: "Post"}
		require.NoError(t, a.Authorize(as("u1"), op))
		require.Len(t, op.Validate, 1)
		assert.Equal(t, map[string]any{"author": map[string]any{"eq": "u1"}}, op.Validate[0].Where)
	})

	t.Run("requires_authentication", func(t *testing.T) {
		op := &dialect.Operation{Kind: dialect.OpUpdate, Entity: "Post"}
		assert.ErrorIs(t, a.Authorize(context.Background(), op), privacy.Deny)
	})
}

func TestPolicyAuthorizerProgrammatic(t *testing.T) {
	t.Run("deny_short_circuits", func(t *testing.T) {
		a := authorizer(t, privacy.WithPolicy(privacy.Policy{
			Query: privacy.QueryPolicy{privacy.OnEntity("Tag", privacy.AlwaysDenyRule())},
		}))
		assert.ErrorIs(t, a.Authorize(as("u1"), &dialect.Operation{Kind: dialect.OpRead, Entity: "Tag"}), privacy.Deny)
		assert.NoError(t, a.Authorize(as("u1"), &dialect.Operation{Kind: dialect.OpRead, Entity: "Post"}))
	})

	t.Run("model_rules_still_apply", func(t *testing.T) {
		a := authorizer(t, privacy.WithPolicy(privacy.Policy{
			Mutation: privacy.MutationPolicy{privacy.AlwaysAllowRule()},
		}))
		err := a.Authorize(context.Background(), &dialect.Operation{Kind: dialect.OpCreate, Entity: "Post"})
		assert.ErrorIs(t, err, privacy.Deny)
	})

	t.Run("context_decision", func(t *testing.T) {
		a := authorizer(t)
		ctx := privacy.DecisionContext(context.Background(), privacy.Allow)
		op := &dialect.Operation{Kind: dialect.OpCreate, Entity: "Post"}
		assert.NoError(t, a.Authorize(ctx, op))
		assert.Empty(t, op.Filters)
	})

	t.Run("nil_model", func(t *testing.T) {
		a := privacy.NewPolicyAuthorizer(nil)
		assert.NoError(t, a.Authorize(context.Background(), &dialect.Operation{Kind: dialect.OpRead, Entity: "Post"}))
	})
}
