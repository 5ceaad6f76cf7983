package load

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// ErrMalformedDocument is matched by every error returned from this package
// for structurally invalid input.
var ErrMalformedDocument = errors.New("graphdef: malformed type definitions")

// ParseError reports a syntax error in one source.
type ParseError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("graphdef: parse %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrMalformedDocument.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedDocument }

// DefinitionError reports a definition that cannot be indexed.
type DefinitionError struct {
	Name     string
	Kind     ast.DefinitionKind
	Message  string
	Position *ast.Position
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString("graphdef: definition error")
	if e.Kind != "" {
		b.WriteString(" on ")
		b.WriteString(strings.ToLower(string(e.Kind)))
	}
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	if e.Position != nil {
		fmt.Fprintf(&b, " (line %d)", e.Position.Line)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrMalformedDocument.
func (e *DefinitionError) Is(target error) bool { return target == ErrMalformedDocument }
