package load

import (
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Normalize parses every text part and merges all parts into one document.
// Type extensions are folded into their definitions; an extension without a
// matching definition becomes the definition. Caller-provided documents are
// copied, never mutated.
func Normalize(parts []Part) (*ast.SchemaDocument, error) {
	merged := &ast.SchemaDocument{}
	for _, p := range parts {
		doc := p.doc
		if doc == nil {
			var err error
			doc, err = parser.ParseSchema(&ast.Source{Name: p.Name, Input: p.Text})
			if err != nil {
				return nil, &ParseError{Source: p.Name, Cause: err}
			}
		}
		merged.Schema = append(merged.Schema, doc.Schema...)
		merged.SchemaExtension = append(merged.SchemaExtension, doc.SchemaExtension...)
		merged.Directives = append(merged.Directives, doc.Directives...)
		for _, def := range doc.Definitions {
			merged.Definitions = append(merged.Definitions, copyDefinition(def))
		}
		for _, ext := range doc.Extensions {
			merged.Extensions = append(merged.Extensions, copyDefinition(ext))
		}
	}
	foldExtensions(merged)
	return merged, nil
}

func foldExtensions(doc *ast.SchemaDocument) {
	byName := make(map[string]*ast.Definition, len(doc.Definitions))
	for _, def := range doc.Definitions {
		byName[def.Name] = def
	}
	for _, ext := range doc.Extensions {
		def, ok := byName[ext.Name]
		if !ok {
			doc.Definitions = append(doc.Definitions, ext)
			byName[ext.Name] = ext
			continue
		}
		def.Directives = append(def.Directives, ext.Directives...)
		def.Interfaces = append(def.Interfaces, ext.Interfaces...)
		def.Fields = append(def.Fields, ext.Fields...)
		def.Types = append(def.Types, ext.Types...)
		def.EnumValues = append(def.EnumValues, ext.EnumValues...)
	}
	doc.Extensions = nil
	for _, ext := range doc.SchemaExtension {
		if len(doc.Schema) == 0 {
			doc.Schema = append(doc.Schema, &ast.SchemaDefinition{Position: ext.Position})
		}
		doc.Schema[0].Directives = append(doc.Schema[0].Directives, ext.Directives...)
		doc.Schema[0].OperationTypes = append(doc.Schema[0].OperationTypes, ext.OperationTypes...)
	}
	doc.SchemaExtension = nil
}

// copyDefinition returns a copy whose slices can be appended to without
// touching the original.
func copyDefinition(def *ast.Definition) *ast.Definition {
	cp := *def
	cp.Directives = slices.Clone(def.Directives)
	cp.Interfaces = slices.Clone(def.Interfaces)
	cp.Fields = slices.Clone(def.Fields)
	cp.Types = slices.Clone(def.Types)
	cp.EnumValues = slices.Clone(def.EnumValues)
	return &cp
}
