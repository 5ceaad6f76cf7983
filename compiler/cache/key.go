package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphdef/compiler/load"
)

// ASTKey derives the ast tier key from the resolved type definitions.
func ASTKey(parts []load.Part) string {
	sum := sha256.Sum256([]byte(load.FlatText(parts)))
	return hex.EncodeToString(sum[:])
}

// ModelKey derives the model tier key from a normalized document and the
// "Type.field" names of the fields that have user resolvers. The order of
// resolvers does not matter.
func ModelKey(doc *ast.SchemaDocument, resolvers []string) string {
	h := sha256.New()
	h.Write([]byte(load.Print(doc)))
	names := slices.Clone(resolvers)
	slices.Sort(names)
	for _, n := range slices.Compact(names) {
		h.Write([]byte{0})
		h.Write([]byte(n))
	}
	return hex.EncodeToString(h.Sum(nil))
}
