package scene

import (
	"errors"
	"fmt"
)

// Sentinel errors. Degenerate geometry is never an error; these report
// misuse of the registry and are surfaced to the caller unchanged.
var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrDuplicateID    = errors.New("node id already allocated")
	ErrDanglingParent = errors.New("parent is not registered")
	ErrCycle          = errors.New("parent list would create a cycle")
	ErrHasDependents  = errors.New("node still has dependents")
	ErrInvalidSpec    = errors.New("invalid node specification")
	ErrStateMismatch  = errors.New("state does not match node variant")
	ErrNotMutable     = errors.New("node does not accept this mutation")
	ErrMissingLabel   = errors.New("node has no label")
	ErrLabelExists    = errors.New("node already has a label")
	ErrReentrantPass  = errors.New("propagation pass already running")
)

// GraphError provides structured error information for registry operations.
type GraphError struct {
	Op      string // Operation that failed (e.g., "insert", "remove")
	ID      NodeID // Node ID (if applicable)
	Name    string // Node name (if known)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	subject := "node"
	switch {
	case e.Name != "":
		subject = fmt.Sprintf("node %s", e.Name)
	case e.ID != 0:
		subject = fmt.Sprintf("node %d", e.ID)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building GraphErrors.
type ErrorBuilder struct {
	err GraphError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: GraphError{Op: op}}
}

// ID sets the node id.
func (b *ErrorBuilder) ID(id NodeID) *ErrorBuilder {
	b.err.ID = id
	return b
}

// Node sets id and name from n.
func (b *ErrorBuilder) Node(n Node) *ErrorBuilder {
	b.err.ID = n.ID()
	b.err.Name = n.Name()
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

func notFound(op string, id NodeID) error {
	return NewError(op).ID(id).Cause(ErrNodeNotFound).Err()
}

// IsIntegrityViolation reports whether err signals a broken registry
// invariant rather than a bad argument.
func IsIntegrityViolation(err error) bool {
	return errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrDanglingParent) ||
		errors.Is(err, ErrHasDependents) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrReentrantPass)
}
