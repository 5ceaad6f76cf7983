// Package dataloader provides generic batching helpers for resolving many
// entity references with few executor calls.
//
// A batched resolver groups its inputs, runs one operation per group and
// maps the returned rows back to the inputs:
//
//	groups := dataloader.GroupByKey(reps, func(r rep) string { return r.typename })
//	names := slices.Sorted(maps.Keys(groups))
//	for i, group := range dataloader.OrderGroupsByKeys(names, groups) {
//	    rows := fetch(ctx, names[i], group)
//	    ordered, errs := dataloader.OrderByKeys(keysOf(group), rows, rowKey)
//	    ...
//	}
//
// Rows may come back in any order; OrderByKeys restores the order of the
// requested keys and reports ErrNotFound for keys without a row.
package dataloader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys.
// Missing entities are represented as zero values with corresponding errors.
// The result always has the length of keys.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups entities by a key function. Within a group the input
// order is kept.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
// Returns a slice of slices where each inner slice contains entities for that key.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// FieldsKey returns the composite key of the named fields of a row. Values
// are compared by their printed form, so 1 (int) and 1.0 (float64 from
// JSON) produce the same key.
func FieldsKey(row map[string]any, fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(0)
		}
		v, ok := row[f]
		if !ok || v == nil {
			continue
		}
		fmt.Fprint(&b, v)
	}
	return b.String()
}
