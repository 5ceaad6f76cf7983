package dataloader

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row = map[string]any

func byName(r row) string { return FieldsKey(r, []string{"name"}) }

// =============================================================================
// OrderByKeys Tests
// =============================================================================

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		keys := []string{"Keanu", "Carrie", "Laurence"}
		values := []row{
			{"name": "Laurence"},
			{"name": "Keanu"},
			{"name": "Carrie"},
		}

		result, errs := OrderByKeys(keys, values, byName)

		require.Len(t, result, 3)
		require.Len(t, errs, 3)
		for i, key := range keys {
			assert.Equal(t, key, result[i]["name"])
			assert.NoError(t, errs[i])
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		keys := []string{"Keanu", "Nobody", "Carrie"}
		values := []row{{"name": "Carrie"}, {"name": "Keanu"}}

		result, errs := OrderByKeys(keys, values, byName)

		require.Len(t, result, 3)
		assert.Equal(t, "Keanu", result[0]["name"])
		assert.Nil(t, result[1])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.Equal(t, "Carrie", result[2]["name"])
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys(nil, []row{{"name": "Keanu"}}, byName)
		assert.Empty(t, result)
		assert.Empty(t, errs)
	})

	t.Run("empty values", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys([]string{"a", "b"}, nil, byName)
		require.Len(t, result, 2)
		for _, err := range errs {
			assert.ErrorIs(t, err, ErrNotFound)
		}
	})

	t.Run("duplicate keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys([]string{"Keanu", "Keanu"}, []row{{"name": "Keanu"}}, byName)
		require.Len(t, result, 2)
		assert.Equal(t, result[0], result[1])
		assert.NoError(t, errs[0])
		assert.NoError(t, errs[1])
	})
}

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	typename := func(r row) string { return r["__typename"].(string) }

	t.Run("groups by key", func(t *testing.T) {
		t.Parallel()
		values := []row{
			{"__typename": "Actor", "name": "Keanu"},
			{"__typename": "Studio", "code": "WB"},
			{"__typename": "Actor", "name": "Carrie"},
		}

		grouped := GroupByKey(values, typename)

		require.Len(t, grouped, 2)
		require.Len(t, grouped["Actor"], 2)
		assert.Equal(t, "Keanu", grouped["Actor"][0]["name"])
		assert.Equal(t, "Carrie", grouped["Actor"][1]["name"])
		assert.Len(t, grouped["Studio"], 1)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GroupByKey(nil, typename))
	})
}

func TestOrderGroupsByKeys(t *testing.T) {
	t.Parallel()

	t.Run("orders groups by keys", func(t *testing.T) {
		t.Parallel()
		groups := map[string][]int{"b": {2, 3}, "a": {1}}
		ordered := OrderGroupsByKeys([]string{"a", "b", "c"}, groups)
		require.Len(t, ordered, 3)
		assert.Equal(t, []int{1}, ordered[0])
		assert.Equal(t, []int{2, 3}, ordered[1])
		assert.Nil(t, ordered[2])
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, OrderGroupsByKeys(nil, map[string][]int{"a": {1}}))
	})
}

func TestFieldsKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   row
		fields []string
		equal  bool
	}{
		{
			name:   "numbers from json",
			a:      row{"id": 1},
			b:      row{"id": float64(1)},
			fields: []string{"id"},
			equal:  true,
		},
		{
			name:   "composite",
			a:      row{"org": "acme", "code": "x", "extra": true},
			b:      row{"code": "x", "org": "acme"},
			fields: []string{"org", "code"},
			equal:  true,
		},
		{
			name:   "field boundaries",
			a:      row{"a": "x", "b": "yz"},
			b:      row{"a": "xy", "b": "z"},
			fields: []string{"a", "b"},
			equal:  false,
		},
		{
			name:   "missing field",
			a:      row{"id": "1"},
			b:      row{},
			fields: []string{"id"},
			equal:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.equal, FieldsKey(tt.a, tt.fields) == FieldsKey(tt.b, tt.fields))
		})
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkOrderByKeys(b *testing.B) {
	keys := make([]string, 1000)
	values := make([]row, 1000)
	for i := range keys {
		keys[i] = fmt.Sprint(i)
		values[len(values)-1-i] = row{"name": keys[i]}
	}
	b.ResetTimer()
	for range b.N {
		_, _ = OrderByKeys(keys, values, byName)
	}
}

func BenchmarkGroupByKey(b *testing.B) {
	values := make([]row, 1000)
	for i := range values {
		values[i] = row{"__typename": fmt.Sprint("T", i%10)}
	}
	b.ResetTimer()
	for range b.N {
		_ = GroupByKey(values, func(r row) string { return r["__typename"].(string) })
	}
}
