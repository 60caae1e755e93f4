package frag

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
)

// Raw returns an interned Raw fragment that will be emitted verbatim at
// compile time. It is the sole entry point that turns an arbitrary Go
// string into a trusted fragment without any validation, so it emits a
// one-time process warning on first use; every other constructor builds
// its Raw output internally without that warning, having already
// validated the text it produces.
func Raw(text string) Fragment {
	warnRawUsage()
	return internRaw(text)
}

// Identifier builds an Identifier fragment from one or more parts. Each
// part must be a string (eagerly double-quote-escaped) or a Token (whose
// alias is assigned during Compile); anything else is ErrInvalidArgument.
// At least one part is required.
func Identifier(parts ...any) (Fragment, error) {
	if len(parts) == 0 {
		return nil, ErrEmptyIdentifier
	}
	out := make([]identPart, 0, len(parts))
	for i, p := range parts {
		switch x := p.(type) {
		case string:
			out = append(out, identPart{quoted: EscapeSQLIdentifier(x)})
		case Token:
			out = append(out, identPart{token: x, isToken: true})
		default:
			return nil, wrapf(ErrInvalidArgument, "identifier part %d must be a string or Token, got %T", i+1, p)
		}
	}
	return &identifierNode{mark: newTrustMark(), parts: out}, nil
}

// numericValue extracts a float64 view of v along with whether v's static
// Go type is one of the integer kinds (which, unlike float32/float64, can
// never be NaN or infinite).
func numericValue(v any) (f float64, isIntType bool, ok bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true, true
	case int8:
		return float64(x), true, true
	case int16:
		return float64(x), true, true
	case int32:
		return float64(x), true, true
	case int64:
		return float64(x), true, true
	case uint:
		return float64(x), true, true
	case uint8:
		return float64(x), true, true
	case uint16:
		return float64(x), true, true
	case uint32:
		return float64(x), true, true
	case uint64:
		return float64(x), true, true
	case float32:
		return float64(x), false, true
	case float64:
		return x, false, true
	default:
		return 0, false, false
	}
}

func isFiniteFloat(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isValidScalarValue reports whether v is a Value()-admissible scalar:
// nil, bool, string, []byte (treated as an opaque binary scalar, not a
// sequence), a finite number, or a (possibly nested) slice/array of
// admissible scalars.
func isValidScalarValue(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case bool, string, []byte:
		return true
	}
	if f, _, ok := numericValue(v); ok {
		return isFiniteFloat(f)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if !isValidScalarValue(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return false
}

// Value constructs a Value fragment. v must be a scalar (string, finite
// number, bool, nil, []byte, or a nested sequence of scalars); anything
// else, including plain objects, is ErrInvalidArgument.
func Value(v any) (Fragment, error) {
	if !isValidScalarValue(v) {
		return nil, wrapf(ErrInvalidArgument, "value() accepts only scalars or nested sequences of scalars, got %T", v)
	}
	return &valueNode{mark: newTrustMark(), value: v}, nil
}

// literalSafe matches strings that may be inlined directly as a quoted
// SQL string literal without parameterization.
var literalSafe = regexp.MustCompile(`^[-a-zA-Z0-9_@!$ :".]*$`)

// Literal returns an inline-safe Raw fragment when v can be rendered
// directly in SQL text without risk, and otherwise delegates to Value.
// Inline-safe cases: strings matching literalSafe (single-quoted and
// inlined), integer finite numbers (inlined as-is), non-integer finite
// numbers (inlined as '<n>'::float), booleans (TRUE/FALSE), and nil
// (NULL). Everything else, including non-finite numbers, is parameterized
// via Value, which will itself reject a non-finite number.
func Literal(v any) (Fragment, error) {
	switch t := v.(type) {
	case nil:
		return NULL, nil
	case bool:
		if t {
			return TRUE, nil
		}
		return FALSE, nil
	case string:
		if literalSafe.MatchString(t) {
			return internRaw("'" + t + "'"), nil
		}
		return Value(v)
	}

	if f, isIntType, ok := numericValue(v); ok {
		if isIntType {
			return internRaw(fmt.Sprintf("%d", v)), nil
		}
		if !isFiniteFloat(f) {
			return Value(v)
		}
		if f == math.Trunc(f) {
			return internRaw(strconv.FormatFloat(f, 'f', -1, 64)), nil
		}
		return internRaw("'" + strconv.FormatFloat(f, 'g', -1, 64) + "'::float"), nil
	}

	return Value(v)
}

// Join flattens each item into the result in order, inserting an interned
// Raw(separator) between items when separator is non-empty. An empty list
// yields BLANK; a single item is validated and returned unchanged. Nested
// Query items are inlined (invariant 3: Query never nests).
func Join(items []any, separator ...string) (Fragment, error) {
	sep := ""
	if len(separator) > 0 {
		sep = separator[0]
	}

	if len(items) == 0 {
		return BLANK, nil
	}
	if len(items) == 1 {
		return requireFragment(items[0], "join item 1")
	}

	var sepNode *rawNode
	if sep != "" {
		sepNode = internRaw(sep)
	}

	nodes := make([]Fragment, 0, len(items)*2)
	for i, item := range items {
		f, err := requireFragment(item, fmt.Sprintf("join item %d", i+1))
		if err != nil {
			return nil, err
		}
		if i > 0 && sepNode != nil {
			nodes = append(nodes, sepNode)
		}
		nodes = flatten(nodes, f)
	}
	return &queryNode{mark: newTrustMark(), nodes: nodes, flags: flagFromJoin}, nil
}

// Indent wraps f in an Indent marker in development mode; in production
// rendering it returns f unchanged, since Indent is a pretty-print-only,
// semantically transparent marker.
func Indent(f any) (Fragment, error) {
	frg, err := requireFragment(f, "indent content")
	if err != nil {
		return nil, err
	}
	if !DevMode() {
		return frg, nil
	}
	return &indentNode{mark: newTrustMark(), content: frg}, nil
}

// IndentIf is Indent gated by cond: it only wraps when both development
// mode and cond are true.
func IndentIf(cond bool, f any) (Fragment, error) {
	frg, err := requireFragment(f, "indent content")
	if err != nil {
		return nil, err
	}
	if !DevMode() || !cond {
		return frg, nil
	}
	return &indentNode{mark: newTrustMark(), content: frg}, nil
}

// Parens wraps f in parentheses, applying the fragment algebra's
// simplification rules before constructing a fresh node:
//
//   - a single-child Query recurses into its child
//   - an already-Parens fragment is returned as-is if its force matches,
//     otherwise it is rewrapped with the requested force
//   - an Indent around a single-child Query whose child is a non-forced
//     Parens is collapsed, rewrapping the inner content directly
//
// Wrapping an empty Query is ErrEmptyParens.
func Parens(f any, force ...bool) (Fragment, error) {
	forced := len(force) > 0 && force[0]
	frg, err := requireFragment(f, "parens content")
	if err != nil {
		return nil, err
	}
	return parensSimplify(frg, forced)
}

func parensSimplify(frg Fragment, forced bool) (Fragment, error) {
	if q, ok := frg.(*queryNode); ok {
		switch len(q.nodes) {
		case 0:
			return nil, ErrEmptyParens
		case 1:
			return parensSimplify(q.nodes[0], forced)
		}
		return &parensNode{mark: newTrustMark(), content: frg, force: forced}, nil
	}
	if p, ok := frg.(*parensNode); ok {
		if p.force == forced {
			return p, nil
		}
		return &parensNode{mark: newTrustMark(), content: p.content, force: forced}, nil
	}
	if ind, ok := frg.(*indentNode); ok {
		if q, ok := ind.content.(*queryNode); ok && len(q.nodes) == 1 {
			if p, ok := q.nodes[0].(*parensNode); ok && !p.force {
				return &parensNode{mark: newTrustMark(), content: p.content, force: forced}, nil
			}
		}
	}
	return &parensNode{mark: newTrustMark(), content: frg, force: forced}, nil
}

// SymbolAlias declares that tokens a and b must render to the same
// identifier alias wherever they appear within one compile. It is safe to
// construct before either token has been used anywhere else.
func SymbolAlias(a, b Token) Fragment {
	return &symbolAliasNode{mark: newTrustMark(), a: a, b: b}
}

// Placeholder constructs a Placeholder fragment resolved at compile time
// by a caller-supplied handle→fragment mapping, falling back to fallback
// (if given) when the handle is unmapped.
func Placeholder(handle Token, fallback ...Fragment) Fragment {
	var fb Fragment
	if len(fallback) > 0 {
		fb = fallback[0]
	}
	return &placeholderNode{mark: newTrustMark(), handle: handle, fallback: fb}
}

// Template composes interleaved literal text and fragments, the way a
// tagged-template-literal call site would in a language that has them:
// literals holds the text pieces known at the call site to be trusted by
// origin, and args holds the interpolated fragment for each gap between
// them, so len(literals) must equal len(args)+1. It short-circuits to
// BLANK for an entirely empty result, or to the unbounded simple-template
// cache's entry when the call has no interpolations at all; otherwise it
// produces a Query.
func Template(literals []string, args ...any) (Fragment, error) {
	if len(literals) != len(args)+1 {
		return nil, wrapf(ErrInvalidArgument, "template() expects len(literals) == len(args)+1, got %d and %d", len(literals), len(args))
	}

	if len(args) == 0 {
		src := literals[0]
		if src == "" {
			return BLANK, nil
		}
		if n, ok := simpleTemplateCache.get(src); ok {
			return n, nil
		}
		n := internRaw(src)
		simpleTemplateCache.put(src, n)
		return n, nil
	}

	nodes := make([]Fragment, 0, len(literals)+len(args))
	for i, lit := range literals {
		if lit != "" {
			nodes = append(nodes, internRaw(lit))
		}
		if i < len(args) {
			f, err := requireFragment(args[i], fmt.Sprintf("template placeholder %d", i+1))
			if err != nil {
				return nil, err
			}
			nodes = flatten(nodes, f)
		}
	}

	switch len(nodes) {
	case 0:
		return BLANK, nil
	case 1:
		return nodes[0], nil
	}
	return &queryNode{mark: newTrustMark(), nodes: nodes, flags: flagFromTemplate}, nil
}
