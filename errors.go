package graphdef

import (
	"errors"
	"fmt"
)

// ErrSchemaNotBuilt is returned by operations that need a built schema
// when none has been built yet.
var ErrSchemaNotBuilt = errors.New("graphdef: schema not built")

// PrerequisiteError reports an operation invoked before the call it
// depends on.
type PrerequisiteError struct {
	Op       string // Operation invoked
	Requires string // Call that must succeed first
}

// Error returns the error string.
func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("graphdef: %s requires a successful call to %s first", e.Op, e.Requires)
}

// Unwrap returns ErrSchemaNotBuilt.
func (e *PrerequisiteError) Unwrap() error {
	return ErrSchemaNotBuilt
}

// NewPrerequisiteError returns a new PrerequisiteError.
func NewPrerequisiteError(op, requires string) *PrerequisiteError {
	return &PrerequisiteError{Op: op, Requires: requires}
}

// IsPrerequisiteError returns true if the error is a PrerequisiteError.
func IsPrerequisiteError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrerequisiteError
	return errors.As(err, &e)
}

// BuildError wraps a failure of one schema build phase.
type BuildError struct {
	Phase string // load, model, generate, validate or assemble
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *BuildError) Error() string {
	return fmt.Sprintf("graphdef: %s: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsBuildError returns true if the error is a BuildError.
func IsBuildError(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildError
	return errors.As(err, &e)
}
