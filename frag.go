package frag

import "github.com/google/uuid"

// trustMark is the unforgeable marker every fragment node carries. Two
// defenses combine to keep it unforgeable: the Fragment interface is
// sealed by an unexported method, so only types declared in this package
// can implement it at all, and every node's mark carries a salt generated
// once per process, so even a zero-value struct of a package-internal type
// assembled through reflection from outside still fails the seal
// comparison in isFragment.
type trustMark struct {
	seal [16]byte
}

// processSeal is generated once per process. It never leaves the package.
var processSeal = uuid.New()

func newTrustMark() trustMark {
	return trustMark{seal: processSeal}
}

func (m trustMark) valid() bool {
	return m.seal == processSeal
}

// Fragment is a trust-marked SQL fragment: a single node or a Query
// aggregating nodes. The only implementations are the types in this
// package; the interface's unexported method keeps it sealed.
type Fragment interface {
	fragmentTrustMark() trustMark
	kind() nodeKind
}

// nodeKind is the tagged-variant discriminant for the fragment algebra. It
// exists so the compiler, equivalence, and rewriter can switch
// exhaustively and treat an unmatched case as an internal invariant
// violation (UnknownNode) rather than a silently-ignored branch.
type nodeKind uint8

const (
	kindRaw nodeKind = iota
	kindValue
	kindIdentifier
	kindIndent
	kindParens
	kindSymbolAlias
	kindPlaceholder
	kindQuery
)

// isFragment reports whether x is a value produced by this package's own
// constructors. It is the sole anti-injection guarantee: every public
// entry point that accepts a fragment calls this (directly or via
// requireFragment) before touching x.
func isFragment(x any) bool {
	f, ok := x.(Fragment)
	return ok && f.fragmentTrustMark().valid()
}

// IsFragment reports whether x is a fragment produced by this package.
func IsFragment(x any) bool {
	return isFragment(x)
}

// requireFragment validates x as a trusted fragment or returns
// ErrInvalidFragment naming position for the caller's error message.
func requireFragment(x any, position string) (Fragment, error) {
	f, ok := x.(Fragment)
	if !ok || !f.fragmentTrustMark().valid() {
		return nil, wrapf(ErrInvalidFragment, "%s", position)
	}
	return f, nil
}

// --- Raw ---

// rawNode is emitted verbatim during compilation. Interned by text.
type rawNode struct {
	mark trustMark
	text string
}

func (n *rawNode) fragmentTrustMark() trustMark { return n.mark }
func (n *rawNode) kind() nodeKind               { return kindRaw }
func (n *rawNode) String() string               { return "Raw(" + n.text + ")" }

// --- Value ---

// valueNode becomes a numbered placeholder at compile time; its scalar is
// appended to the compiled value list. Scalars are string, finite number,
// bool, nil, or a (possibly nested) slice of scalars.
type valueNode struct {
	mark  trustMark
	value any
}

func (n *valueNode) fragmentTrustMark() trustMark { return n.mark }
func (n *valueNode) kind() nodeKind               { return kindValue }
func (n *valueNode) String() string               { return "Value(…)" }

// --- Identifier ---

// identPart is either a pre-escaped quoted string (isToken == false,
// quoted already includes the surrounding double quotes) or an opaque
// token whose rendered alias is assigned during Compile.
type identPart struct {
	quoted  string
	token   Token
	isToken bool
}

// identifierNode joins its parts with "." at compile time.
type identifierNode struct {
	mark  trustMark
	parts []identPart
}

func (n *identifierNode) fragmentTrustMark() trustMark { return n.mark }
func (n *identifierNode) kind() nodeKind               { return kindIdentifier }
func (n *identifierNode) String() string               { return "Identifier(…)" }

// --- Indent ---

// indentNode is a pretty-print-only marker, semantically transparent in
// production rendering.
type indentNode struct {
	mark    trustMark
	content Fragment
}

func (n *indentNode) fragmentTrustMark() trustMark { return n.mark }
func (n *indentNode) kind() nodeKind               { return kindIndent }
func (n *indentNode) String() string               { return "Indent(…)" }

// --- Parens ---

// parensNode wraps content in parentheses if force is true or content is
// not lexically parens-safe once rendered.
type parensNode struct {
	mark    trustMark
	content Fragment
	force   bool
}

func (n *parensNode) fragmentTrustMark() trustMark { return n.mark }
func (n *parensNode) kind() nodeKind               { return kindParens }
func (n *parensNode) String() string               { return "Parens(…)" }

// --- SymbolAlias ---

// symbolAliasNode declares that two opaque tokens must render to the same
// identifier alias. It renders as nothing; its only effect is on the
// compiler's handle→alias table.
type symbolAliasNode struct {
	mark trustMark
	a, b Token
}

func (n *symbolAliasNode) fragmentTrustMark() trustMark { return n.mark }
func (n *symbolAliasNode) kind() nodeKind               { return kindSymbolAlias }
func (n *symbolAliasNode) String() string               { return "SymbolAlias(…)" }

// --- Placeholder ---

// placeholderNode is resolved at compile time by a caller-supplied mapping
// from handle to fragment; fallback is used if the handle is unmapped.
type placeholderNode struct {
	mark     trustMark
	handle   Token
	fallback Fragment // nil if none supplied
}

func (n *placeholderNode) fragmentTrustMark() trustMark { return n.mark }
func (n *placeholderNode) kind() nodeKind               { return kindPlaceholder }
func (n *placeholderNode) String() string               { return "Placeholder(…)" }

// --- Query ---

// queryFlag records non-semantic provenance metadata about how a Query
// was assembled. It never affects compilation or equivalence; the
// fragment algebra's data model names a "flags" field on Query without
// defining its bits, so this implementation records it as provenance
// only; nothing in the package reads it.
type queryFlag uint8

const (
	flagFromJoin queryFlag = 1 << iota
	flagFromTemplate
)

// queryNode aggregates a flattened sequence of non-Query nodes. Composing
// a Query into another always inlines its nodes; a queryNode never holds a
// *queryNode child.
type queryNode struct {
	mark  trustMark
	nodes []Fragment
	flags queryFlag
}

func (n *queryNode) fragmentTrustMark() trustMark { return n.mark }
func (n *queryNode) kind() nodeKind               { return kindQuery }
func (n *queryNode) String() string               { return "Query(…)" }

// flatten appends f to out, inlining f's nodes if f is itself a Query.
// Used by the constructors that assemble multiple fragments (Join and
// Template) to preserve invariant 3:
// Query nodes never nest.
func flatten(out []Fragment, f Fragment) []Fragment {
	if q, ok := f.(*queryNode); ok {
		return append(out, q.nodes...)
	}
	return append(out, f)
}
