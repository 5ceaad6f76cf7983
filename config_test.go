package graphdef_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphdef"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("full", func(t *testing.T) {
		t.Parallel()
		f, err := graphdef.ParseConfig([]byte(`
typeDefs:
  - schema/*.graphql
cache:
  enabled: false
  level: ast
  directory: .cache
  ttl: 1000
  serialization: msgpack
features:
  subscriptions: true
  excludeDeprecatedFields: true
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"schema/*.graphql"}, f.TypeDefs)
		require.NotNil(t, f.Cache)
		require.NotNil(t, f.Cache.Enabled)
		assert.False(t, *f.Cache.Enabled)
		assert.Equal(t, "ast", f.Cache.Level)
		assert.Equal(t, int64(1000), f.Cache.TTL)
		assert.Equal(t, "msgpack", f.Cache.Serialization)
		assert.True(t, f.Features.Subscriptions)
		assert.True(t, f.Features.ExcludeDeprecatedFields)
		assert.Len(t, f.Options(), 3)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		f, err := graphdef.ParseConfig(nil)
		require.NoError(t, err)
		assert.Empty(t, f.Options())
		_, err = f.Source()
		assert.ErrorContains(t, err, "no typeDefs")
	})

	t.Run("unknown_key", func(t *testing.T) {
		t.Parallel()
		_, err := graphdef.ParseConfig([]byte("typedefs: [a.graphql]\n"))
		assert.ErrorContains(t, err, "parse config")
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", "users.graphql"), []byte(usersSDL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graphdef.yml"), []byte(`
typeDefs: [schema/*.graphql]
cache:
  directory: .cache
`), 0o644))

	f, err := graphdef.LoadConfig(filepath.Join(dir, "graphdef.yml"))
	require.NoError(t, err)
	src, err := f.Source()
	require.NoError(t, err)
	g, err := graphdef.New(src, f.Options()...)
	require.NoError(t, err)
	exe, err := g.Schema(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, exe.Document.Definitions.ForName("User"))
	assert.DirExists(t, filepath.Join(dir, ".cache"))

	t.Run("no_match", func(t *testing.T) {
		f := *f
		f.TypeDefs = []string{"missing/*.graphql"}
		_, err := f.Source()
		assert.ErrorContains(t, err, "matches no files")
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := graphdef.LoadConfig(filepath.Join(dir, "nope.yml"))
		assert.ErrorContains(t, err, "read config")
	})
}
