// Package diagnostics implements the error kinds of spec.md §7 and a
// one-message terminal renderer for whatever embeds the compiler.
package diagnostics

import "fmt"

// ParseError covers tokenization failures, malformed literals, and unknown
// statement keyword forms.
type ParseError struct{ Reason string }

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %s", e.Reason) }

// UndefinedReferenceError covers an unresolved variable, function, macro,
// type alias, or enum variant.
type UndefinedReferenceError struct {
	Kind string // "variable", "function", "macro", "type alias", "enum variant"
	Name string
}

func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("undefined %s: %s", e.Kind, e.Name)
}

// ArityMismatchError covers a function/macro call with the wrong argument
// count.
type ArityMismatchError struct {
	Name     string
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Name, e.Expected, e.Got)
}

// TypeMismatchError covers operator operand disagreement, assignment to a
// wrong-type slot, or a return-type mismatch.
type TypeMismatchError struct {
	Context  string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, e.Expected, e.Got)
}

// ScopeViolationError covers break/next outside a loop, or reassigning a
// function parameter.
type ScopeViolationError struct{ Reason string }

func (e *ScopeViolationError) Error() string { return fmt.Sprintf("scope error: %s", e.Reason) }

// NullabilityError covers a null-check or nullable marker applied to a
// non-heap (primitive) type.
type NullabilityError struct{ Type string }

func (e *NullabilityError) Error() string {
	return fmt.Sprintf("nullability error: %s is not a heap type", e.Type)
}

// CastError covers an unsupported source/target pair for `as`.
type CastError struct {
	From string
	To   string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %s to %s", e.From, e.To)
}

// InvariantError covers a mixed-type array literal or an enum tag that is
// not a declared variant.
type InvariantError struct{ Reason string }

func (e *InvariantError) Error() string { return fmt.Sprintf("invariant violation: %s", e.Reason) }
