package resolver

import (
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/syssam/graphdef/dialect"
)

// Selections converts the selection set of the resolved field into the
// executor's form. Fragment spreads and inline fragments are flattened,
// variables are substituted and @skip/@include are honoured.
func Selections(info graphql.ResolveInfo) []dialect.Selection {
	s := selector{fragments: info.Fragments, vars: info.VariableValues}
	var out []dialect.Selection
	for _, f := range info.FieldASTs {
		if f.SelectionSet != nil {
			out = append(out, s.set(f.SelectionSet, "")...)
		}
	}
	return out
}

type selector struct {
	fragments map[string]ast.Definition
	vars      map[string]any
}

func (s selector) set(set *ast.SelectionSet, on string) []dialect.Selection {
	var out []dialect.Selection
	for _, sel := range set.Selections {
		switch sel := sel.(type) {
		case *ast.Field:
			if !s.included(sel.Directives) {
				continue
			}
			item := dialect.Selection{Name: sel.Name.Value, TypeCondition: on}
			if sel.Alias != nil {
				item.Alias = sel.Alias.Value
			}
			if len(sel.Arguments) > 0 {
				item.Args = make(map[string]any, len(sel.Arguments))
				for _, arg := range sel.Arguments {
					item.Args[arg.Name.Value] = Literal(arg.Value, s.vars)
				}
			}
			if sel.SelectionSet != nil {
				item.Children = s.set(sel.SelectionSet, "")
			}
			out = append(out, item)
		case *ast.InlineFragment:
			if !s.included(sel.Directives) {
				continue
			}
			out = append(out, s.set(sel.SelectionSet, typeCondition(sel.TypeCondition, on))...)
		case *ast.FragmentSpread:
			if !s.included(sel.Directives) {
				continue
			}
			def, ok := s.fragments[sel.Name.Value].(*ast.FragmentDefinition)
			if !ok {
				continue
			}
			out = append(out, s.set(def.SelectionSet, typeCondition(def.TypeCondition, on))...)
		}
	}
	return out
}

func typeCondition(named *ast.Named, outer string) string {
	if named == nil || named.Name == nil {
		return outer
	}
	return named.Name.Value
}

func (s selector) included(dirs []*ast.Directive) bool {
	for _, d := range dirs {
		var cond bool
		for _, arg := range d.Arguments {
			if arg.Name.Value == "if" {
				cond, _ = Literal(arg.Value, s.vars).(bool)
			}
		}
		switch d.Name.Value {
		case "skip":
			if cond {
				return false
			}
		case "include":
			if !cond {
				return false
			}
		}
	}
	return true
}

// Literal converts an argument value into plain Go values, substituting
// variables from vars. Numbers that parse as integers become int.
func Literal(v ast.Value, vars map[string]any) any {
	switch v := v.(type) {
	case *ast.Variable:
		return vars[v.Name.Value]
	case *ast.IntValue:
		if n, err := strconv.Atoi(v.Value); err == nil {
			return n
		}
		return v.Value
	case *ast.FloatValue:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	case *ast.ListValue:
		out := make([]any, len(v.Values))
		for i, e := range v.Values {
			out[i] = Literal(e, vars)
		}
		return out
	case *ast.ObjectValue:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = Literal(f.Value, vars)
		}
		return out
	default:
		return nil
	}
}
