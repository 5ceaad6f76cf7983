package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/gen"
	"github.com/syssam/graphdef/schema"
)

// class groups attribute kinds that share generated filter, mutation and
// aggregation types.
type class uint8

const (
	classText class = iota + 1
	classNumber
	classTemporal
	classBoolean
	classPoint
	classEnum
	classScalar
)

// classOf is the closed dispatch from attribute kinds to generated types.
// A kind without generated types is a generation error.
func (e *emitter) classOf(owner string, f *gen.Field) (class, bool) {
	switch f.Kind {
	case gen.KindID, gen.KindString:
		return classText, true
	case gen.KindInt, gen.KindFloat, gen.KindBigInt:
		return classNumber, true
	case gen.KindDateTime, gen.KindLocalDateTime, gen.KindDate, gen.KindTime, gen.KindLocalTime, gen.KindDuration:
		return classTemporal, true
	case gen.KindBoolean:
		return classBoolean, true
	case gen.KindPoint, gen.KindCartesianPoint:
		return classPoint, true
	case gen.KindEnum:
		return classEnum, true
	case gen.KindScalar:
		return classScalar, true
	}
	e.fail(gen.NewGenerationError("scalar", owner, f.Name, fmt.Sprintf("no generated types for attribute kind %s", f.Kind), nil))
	return 0, false
}

// catalog emits the catalog definition of a scalar or spatial type the
// first time it is referenced.
func (e *emitter) catalog(name string) {
	if _, ok := e.index[name]; ok {
		return
	}
	if def, ok := schema.CatalogType(name); ok {
		e.add(def)
	}
}

// valueType returns the input type of one value of the attribute.
func (e *emitter) valueType(cl class, base string) string {
	if cl != classPoint {
		e.catalog(base)
		return base
	}
	if base == "CartesianPoint" {
		return e.ensure("CartesianPointInput", ast.InputObject, func(d *ast.Definition) {
			d.Fields = ast.FieldList{field("x", nonNull("Float")), field("y", nonNull("Float")), field("z", named("Float"))}
		})
	}
	return e.ensure("PointInput", ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("longitude", nonNull("Float")), field("latitude", nonNull("Float")), field("height", named("Float"))}
	})
}

func (e *emitter) distanceType(base string) string {
	point := e.valueType(classPoint, base)
	return e.ensure(base+"Distance", ast.InputObject, func(d *ast.Definition) {
		d.Fields = ast.FieldList{field("point", nonNull(point)), field("distance", nonNull("Float"))}
	})
}

// op is one generated filter or mutation operator.
type op struct {
	name string
	flat string
	typ  *ast.Type
}

func (e *emitter) filterOps(cl class, base string, list bool) []op {
	val := e.valueType(cl, base)
	if list {
		return []op{
			{"eq", "EQ", listOf(val)},
			{"includes", "INCLUDES", named(val)},
		}
	}
	eq := []op{{"eq", "EQ", named(val)}, {"in", "IN", listOf(val)}}
	switch cl {
	case classText:
		return append(eq,
			op{"contains", "CONTAINS", named(val)},
			op{"startsWith", "STARTS_WITH", named(val)},
			op{"endsWith", "ENDS_WITH", named(val)},
		)
	case classNumber, classTemporal:
		return append(eq,
			op{"lt", "LT", named(val)},
			op{"lte", "LTE", named(val)},
			op{"gt", "GT", named(val)},
			op{"gte", "GTE", named(val)},
		)
	case classBoolean:
		return eq[:1]
	case classPoint:
		dist := e.distanceType(base)
		return append(eq,
			op{"lt", "LT", named(dist)},
			op{"lte", "LTE", named(dist)},
			op{"gt", "GT", named(dist)},
			op{"gte", "GTE", named(dist)},
			op{"distance", "DISTANCE", named(dist)},
		)
	}
	return eq
}

func filterName(cl class, base string, list bool) string {
	switch {
	case cl == classEnum && list:
		return base + "ListEnumScalarFilters"
	case cl == classEnum:
		return base + "EnumScalarFilters"
	case cl == classScalar && list:
		return base + "ListScalarFilters"
	case list:
		return base + "ListFilters"
	case cl == classPoint:
		return base + "Filters"
	}
	return base + "ScalarFilters"
}

// filters ensures the generic filter type of a value of class cl.
func (e *emitter) filters(cl class, base string, list bool) string {
	ops := e.filterOps(cl, base, list)
	return e.ensure(filterName(cl, base, list), ast.InputObject, func(d *ast.Definition) {
		for _, o := range ops {
			d.Fields = append(d.Fields, field(o.name, o.typ))
		}
	})
}

func (e *emitter) mutationOps(cl class, base string, list bool) []op {
	val := e.valueType(cl, base)
	if list {
		return []op{
			{"set", "SET", listOf(val)},
			{"push", "PUSH", listOf(val)},
			{"pop", "POP", named("Int")},
		}
	}
	ops := []op{{"set", "SET", named(val)}}
	switch base {
	case "Int", "BigInt":
		ops = append(ops, op{"add", "INCREMENT", named(base)}, op{"subtract", "DECREMENT", named(base)})
	case "Float":
		ops = append(ops,
			op{"add", "ADD", named(base)},
			op{"subtract", "SUBTRACT", named(base)},
			op{"multiply", "MULTIPLY", named(base)},
			op{"divide", "DIVIDE", named(base)},
		)
	}
	return ops
}

func mutationName(cl class, base string, list bool) string {
	switch {
	case cl == classEnum && list:
		return base + "ListEnumScalarMutations"
	case cl == classEnum:
		return base + "EnumScalarMutations"
	case cl == classScalar && list:
		return base + "ListScalarMutations"
	case list:
		return base + "ListMutations"
	case cl == classPoint:
		return base + "Mutations"
	}
	return base + "ScalarMutations"
}

func (e *emitter) mutations(cl class, base string, list bool) string {
	ops := e.mutationOps(cl, base, list)
	return e.ensure(mutationName(cl, base, list), ast.InputObject, func(d *ast.Definition) {
		for _, o := range ops {
			d.Fields = append(d.Fields, field(o.name, o.typ))
		}
	})
}

// whereFields returns the Where entries of an attribute: the generic
// filter and, unless excluded, the deprecated flat operators.
func (e *emitter) whereFields(owner string, f *gen.Field) ast.FieldList {
	cl, ok := e.classOf(owner, f)
	if !ok {
		return nil
	}
	out := ast.FieldList{field(f.Name, named(e.filters(cl, f.Type.Name, f.Type.List)))}
	if !e.deprecated {
		return out
	}
	for _, o := range e.filterOps(cl, f.Type.Name, f.Type.List) {
		fd := field(f.Name+"_"+o.flat, o.typ)
		fd.Directives = ast.DirectiveList{deprecatedDirective(fmt.Sprintf(deprecatedFilter, f.Name, o.name))}
		out = append(out, fd)
	}
	return out
}

// updateFields returns the UpdateInput entries of an attribute.
func (e *emitter) updateFields(owner string, f *gen.Field) ast.FieldList {
	cl, ok := e.classOf(owner, f)
	if !ok {
		return nil
	}
	out := ast.FieldList{field(f.Name, named(e.mutations(cl, f.Type.Name, f.Type.List)))}
	if !e.deprecated {
		return out
	}
	for _, o := range e.mutationOps(cl, f.Type.Name, f.Type.List) {
		fd := field(f.Name+"_"+o.flat, o.typ)
		fd.Directives = ast.DirectiveList{deprecatedDirective(fmt.Sprintf(deprecatedMutation, f.Name, o.name))}
		out = append(out, fd)
	}
	return out
}

// createType returns the CreateInput type of an attribute. Attributes with
// a default are optional.
func (e *emitter) createType(owner string, f *gen.Field) *ast.Type {
	cl, ok := e.classOf(owner, f)
	if !ok {
		return nil
	}
	val := e.valueType(cl, f.Type.Name)
	nn := f.Type.NonNull && f.Default == nil
	if f.Type.List {
		t := ast.ListType(&ast.Type{NamedType: val, NonNull: f.Type.ElemNonNull}, nil)
		t.NonNull = nn
		return t
	}
	return &ast.Type{NamedType: val, NonNull: nn}
}

// aggregateSelection ensures the aggregate output type of an attribute.
func (e *emitter) aggregateSelection(f *gen.Field) string {
	base := f.Type.Name
	e.catalog(base)
	name := base + "AggregateSelection"
	return e.ensure(name, ast.Object, func(d *ast.Definition) {
		switch {
		case f.Kind == gen.KindString:
			d.Fields = ast.FieldList{field("shortest", named(base)), field("longest", named(base)), field("averageLength", named("Float"))}
		case f.Kind == gen.KindID:
			d.Fields = ast.FieldList{field("shortest", named(base)), field("longest", named(base))}
		case f.Kind.Numeric():
			avg := "Float"
			if f.Kind == gen.KindBigInt {
				avg = base
			}
			d.Fields = ast.FieldList{field("min", named(base)), field("max", named(base)), field("average", named(avg)), field("sum", named(base))}
		default:
			d.Fields = ast.FieldList{field("min", named(base)), field("max", named(base))}
		}
	})
}

// aggregationFilters ensures the aggregation filter input of an attribute.
func (e *emitter) aggregationFilters(f *gen.Field) string {
	switch {
	case f.Kind == gen.KindID || f.Kind == gen.KindString:
		return e.ensure("StringScalarAggregationFilters", ast.InputObject, func(d *ast.Definition) {
			d.Fields = ast.FieldList{
				field("averageLength", named(e.filters(classNumber, "Float", false))),
				field("shortestLength", named(e.filters(classNumber, "Int", false))),
				field("longestLength", named(e.filters(classNumber, "Int", false))),
			}
		})
	case f.Kind.Numeric():
		base := f.Type.Name
		return e.ensure(base+"ScalarAggregationFilters", ast.InputObject, func(d *ast.Definition) {
			avg := "Float"
			if f.Kind == gen.KindBigInt {
				avg = base
			}
			own := named(e.filters(classNumber, base, false))
			d.Fields = ast.FieldList{
				field("average", named(e.filters(classNumber, avg, false))),
				field("min", own),
				field("max", own),
				field("sum", own),
			}
		})
	}
	base := f.Type.Name
	return e.ensure(base+"ScalarAggregationFilters", ast.InputObject, func(d *ast.Definition) {
		own := named(e.filters(classTemporal, base, false))
		d.Fields = ast.FieldList{field("min", own), field("max", own)}
	})
}
