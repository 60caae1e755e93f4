package frag

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFragment is returned when a value at a fragment position is
	// not one produced by this package's own constructors.
	ErrInvalidFragment = errors.New("frag: invalid fragment")
	// ErrInvalidArgument is returned for well-typed but semantically wrong
	// constructor arguments (an identifier part that is neither a string
	// nor a Token, a non-scalar to Value, a literal/argument count mismatch
	// in Template).
	ErrInvalidArgument = errors.New("frag: invalid argument")
	// ErrEmptyIdentifier is returned by Identifier() when called with no
	// parts.
	ErrEmptyIdentifier = errors.New("frag: identifier requires at least one part")
	// ErrTooManyParameters is returned by Compile when the number of Value
	// nodes walked would exceed the PostgreSQL wire protocol's 65535
	// parameter ceiling.
	ErrTooManyParameters = errors.New("frag: too many parameters")
	// ErrUnresolvedPlaceholder is returned by Compile when a Placeholder
	// node has neither a caller-supplied value nor a fallback.
	ErrUnresolvedPlaceholder = errors.New("frag: unresolved placeholder")
	// ErrConflictingSymbolAlias is returned by Compile when a SymbolAlias
	// node joins two tokens that already have different, previously
	// assigned aliases.
	ErrConflictingSymbolAlias = errors.New("frag: conflicting symbol alias")
	// ErrEmptyParens is returned by Parens() when wrapping an empty Query.
	ErrEmptyParens = errors.New("frag: parens around empty fragment")
	// ErrSubstitutionCycle is returned by IsEquivalent when the symbol
	// substitution map contains a cycle.
	ErrSubstitutionCycle = errors.New("frag: substitution cycle")
	// ErrSelfSubstitution is returned by IsEquivalent when a token maps to
	// itself in the symbol substitution map.
	ErrSelfSubstitution = errors.New("frag: self substitution")
)

// wrapf wraps a sentinel error with a formatted detail message using
// fmt.Errorf("%w: ...", Err..., detail), so callers can still match with
// errors.Is while getting a specific, position-named message.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
