package gen

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFeatures(t *testing.T) {
	t.Run("known feature", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithFeatures(FeatureSubscriptions)(c))
		assert.True(t, c.FeatureEnabled(FeatureSubscriptions.Name))
		assert.False(t, c.FeatureEnabled(FeatureFederation.Name))
	})

	t.Run("unknown feature", func(t *testing.T) {
		err := WithFeatures(Feature{Name: "teleport"})(&Config{})
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithFeatureNames(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{"none", nil, false},
		{"one", []string{"excludeDeprecatedFields"}, false},
		{"all", []string{"excludeDeprecatedFields", "subscriptions", "federation"}, false},
		{"unknown", []string{"federation", "teleport"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithFeatureNames(tt.names...)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			for _, name := range tt.names {
				assert.True(t, c.FeatureEnabled(name), name)
			}
		})
	}
}

func TestWithResolvers(t *testing.T) {
	c := MustNewConfig(WithResolvers("Movie.rating", "Query.hello"))
	assert.True(t, c.HasResolver("Movie", "rating"))
	assert.True(t, c.HasResolver("Query", "hello"))
	assert.False(t, c.HasResolver("Movie", "hello"))
}

func TestWithLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		_, err := NewConfig(WithLogger(nil))
		require.Error(t, err)
	})

	t.Run("receives build warnings", func(t *testing.T) {
		var buf bytes.Buffer
		l := slog.New(slog.NewTextHandler(&buf, nil))
		_, err := buildGraph(t, `type A @node { x: String @customResolver }`, WithLogger(l))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "custom resolver field has no resolver")
		assert.Contains(t, buf.String(), "field=x")
	})

	t.Run("defaults to slog.Default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), (&Config{}).logger())
	})
}

func TestConfigApply(t *testing.T) {
	t.Run("stops at the first error", func(t *testing.T) {
		c := &Config{}
		err := c.Apply(WithLogger(nil), WithResolvers("A.b"))
		require.Error(t, err)
		assert.Empty(t, c.Resolvers)
	})

	t.Run("ApplyAll collects every error", func(t *testing.T) {
		c := &Config{}
		err := c.ApplyAll(WithLogger(nil), WithResolvers("A.b"), WithFeatureNames("teleport"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Logger")
		assert.Contains(t, err.Error(), "teleport")
		assert.Equal(t, []string{"A.b"}, c.Resolvers)
	})

	t.Run("MustNewConfig panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNewConfig(WithFeatureNames("teleport")) })
	})
}
