package subscription

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Match reports whether props satisfies a subscription where input. A nil
// or empty where matches everything. Attribute entries take the generic
// filter form, e.g. {"title": {"startsWith": "The"}}; unknown operators
// never match.
func Match(where map[string]any, props map[string]any) bool {
	for key, cond := range where {
		if cond == nil {
			continue
		}
		switch key {
		case "AND":
			for _, w := range list(cond) {
				if m, ok := w.(map[string]any); ok && !Match(m, props) {
					return false
				}
			}
		case "OR":
			matched := false
			for _, w := range list(cond) {
				if m, ok := w.(map[string]any); ok && Match(m, props) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "NOT":
			if m, ok := cond.(map[string]any); ok && Match(m, props) {
				return false
			}
		default:
			ops, ok := cond.(map[string]any)
			if !ok {
				return false
			}
			if !matchField(props[key], ops) {
				return false
			}
		}
	}
	return true
}

func matchField(v any, ops map[string]any) bool {
	for op, want := range ops {
		if want == nil {
			continue
		}
		var ok bool
		switch op {
		case "eq":
			ok = equal(v, want)
		case "in":
			ok = slices.ContainsFunc(list(want), func(w any) bool { return equal(v, w) })
		case "includes":
			ok = slices.ContainsFunc(list(v), func(e any) bool { return equal(e, want) })
		case "contains", "startsWith", "endsWith":
			s, sok := v.(string)
			w, wok := want.(string)
			if sok && wok {
				switch op {
				case "contains":
					ok = strings.Contains(s, w)
				case "startsWith":
					ok = strings.HasPrefix(s, w)
				default:
					ok = strings.HasSuffix(s, w)
				}
			}
		case "lt", "lte", "gt", "gte":
			c, cok := compare(v, want)
			if cok {
				switch op {
				case "lt":
					ok = c < 0
				case "lte":
					ok = c <= 0
				case "gt":
					ok = c > 0
				default:
					ok = c >= 0
				}
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func list(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func equal(a, b any) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	if la, lb := list(a), list(b); la != nil && lb != nil {
		return slices.EqualFunc(la, lb, equal)
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && reflect.TypeOf(a) == reflect.TypeOf(b)
}

// compare orders numbers numerically and strings lexically, which orders
// ISO-8601 temporal values correctly.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1, true
			case x > y:
				return 1, true
			}
			return 0, true
		}
	}
	x, aok := a.(string)
	y, bok := b.(string)
	if aok && bok {
		return strings.Compare(x, y), true
	}
	return 0, false
}
