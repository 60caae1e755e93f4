package frag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// maxParameters is the PostgreSQL wire protocol's hard ceiling on bound
// parameters in a single extended-query message.
const maxParameters = 65535

// compileOptions holds Compile's optional settings, built via the
// functional-options pattern: Compile(f, WithPlaceholderValues(...)) keeps
// the call site readable as options grow, without breaking existing
// callers each time a new one is added.
type compileOptions struct {
	placeholderValues map[Token]Fragment
}

// CompileOption configures a single Compile call.
type CompileOption func(*compileOptions)

// WithPlaceholderValues supplies the handle→fragment mapping Compile uses
// to resolve Placeholder nodes. A handle absent from m falls back to the
// Placeholder's own fallback fragment, if any.
func WithPlaceholderValues(m map[Token]Fragment) CompileOption {
	return func(o *compileOptions) { o.placeholderValues = m }
}

// compileState is the compiler's scratch state for a single Compile call:
// the output buffer, the extracted values, the value counter, and the
// handle→alias and description→count tables driving deterministic alias
// assignment. Pooled across calls so repeated compiles avoid reallocating
// these buffers — each Compile call still gets its own private state,
// since sync.Pool hands out a distinct value per Get.
type compileState struct {
	buf               []byte
	values            []any
	valueCount        int
	aliases           map[uint64]string
	descCount         map[string]int
	placeholderValues map[Token]Fragment
}

var compileStatePool = sync.Pool{
	New: func() any {
		return &compileState{
			buf:       make([]byte, 0, 256),
			values:    make([]any, 0, 8),
			aliases:   make(map[uint64]string, 8),
			descCount: make(map[string]int, 8),
		}
	},
}

func getCompileState() *compileState {
	return compileStatePool.Get().(*compileState)
}

func putCompileState(st *compileState) {
	st.buf = st.buf[:0]
	st.values = st.values[:0]
	st.valueCount = 0
	for k := range st.aliases {
		delete(st.aliases, k)
	}
	for k := range st.descCount {
		delete(st.descCount, k)
	}
	st.placeholderValues = nil
	compileStatePool.Put(st)
}

// Compile walks fragment f and returns the rendered SQL text, with
// numbered placeholders ($1, $2, …) in the order Value nodes were first
// emitted, and the parallel slice of extracted values. Compilation is
// deterministic: the same fragment plus the same options yields
// byte-identical output.
func Compile(f any, opts ...CompileOption) (string, []any, error) {
	root, err := requireFragment(f, "root fragment")
	if err != nil {
		return "", nil, err
	}

	var cfg compileOptions
	for _, o := range opts {
		o(&cfg)
	}

	st := getCompileState()
	defer putCompileState(st)
	st.placeholderValues = cfg.placeholderValues

	if err := renderSequence(nodesOf(root), st, 0); err != nil {
		return "", nil, err
	}

	text := string(st.buf)
	if DevMode() {
		text = collapseBlankLines(text)
	}
	values := append([]any(nil), st.values...)
	return text, values, nil
}

// MustCompile is Compile, panicking on error. Intended for fixed
// fragments known-good at package-init time, e.g. a constant WHERE clause
// built once and memoized by the caller.
func MustCompile(f any, opts ...CompileOption) (string, []any) {
	text, values, err := Compile(f, opts...)
	if err != nil {
		panic(err)
	}
	return text, values
}

// nodesOf returns the node sequence a fragment represents for rendering
// purposes: a Query's flattened children, or a singleton sequence holding
// f itself.
func nodesOf(f Fragment) []Fragment {
	if q, ok := f.(*queryNode); ok {
		return q.nodes
	}
	return []Fragment{f}
}

// renderSequence walks nodes in order, writing rendered text into st.buf
// and side-effecting st's values/alias tables. level is the current
// pretty-print nesting depth (only meaningful in development mode).
func renderSequence(nodes []Fragment, st *compileState, level int) error {
	for i, n := range nodes {
		last := i == len(nodes)-1
		switch n.kind() {
		case kindRaw:
			if err := renderRaw(n.(*rawNode), st, level, last); err != nil {
				return err
			}
		case kindValue:
			if err := renderValue(n.(*valueNode), st); err != nil {
				return err
			}
		case kindIdentifier:
			renderIdentifier(n.(*identifierNode), st)
		case kindIndent:
			if err := renderIndent(n.(*indentNode), st, level); err != nil {
				return err
			}
		case kindParens:
			if err := renderParens(n.(*parensNode), st, level); err != nil {
				return err
			}
		case kindSymbolAlias:
			san := n.(*symbolAliasNode)
			if err := applySymbolAlias(st, san.a, san.b); err != nil {
				return err
			}
		case kindPlaceholder:
			if err := renderPlaceholder(n.(*placeholderNode), st, level); err != nil {
				return err
			}
		case kindQuery:
			// invariant 3 (Query never nests) means nodesOf already
			// flattens; reaching here means a Query slipped in through
			// direct struct construction rather than a constructor, an
			// internal invariant violation.
			if err := renderSequence(n.(*queryNode).nodes, st, level); err != nil {
				return err
			}
		default:
			panic(fmt.Sprintf("frag: unknown node kind %d: internal invariant violation", n.kind()))
		}
	}
	return nil
}

func renderRaw(n *rawNode, st *compileState, level int, last bool) error {
	if last && n.text == ";" {
		st.buf = trimTrailingNewlineAndSpaces(st.buf)
		st.buf = append(st.buf, ';')
		return nil
	}
	text := n.text
	if DevMode() && strings.Contains(text, "\n") {
		text = strings.ReplaceAll(text, "\n", "\n"+strings.Repeat("  ", level))
	}
	st.buf = append(st.buf, text...)
	return nil
}

func trimTrailingNewlineAndSpaces(buf []byte) []byte {
	i := len(buf)
	for i > 0 && buf[i-1] == ' ' {
		i--
	}
	if i > 0 && buf[i-1] == '\n' {
		i--
	}
	return buf[:i]
}

func renderValue(n *valueNode, st *compileState) error {
	st.valueCount++
	if st.valueCount > maxParameters {
		return wrapf(ErrTooManyParameters, "PostgreSQL's wire protocol allows at most %d bound parameters per statement", maxParameters)
	}
	st.values = append(st.values, n.value)
	st.buf = append(st.buf, '$')
	st.buf = strconv.AppendInt(st.buf, int64(st.valueCount), 10)
	return nil
}

func renderIdentifier(n *identifierNode, st *compileState) {
	for j, part := range n.parts {
		if j > 0 {
			st.buf = append(st.buf, '.')
		}
		if part.isToken {
			st.buf = append(st.buf, getAlias(st, part.token)...)
		} else {
			st.buf = append(st.buf, part.quoted...)
		}
	}
}

func renderIndent(n *indentNode, st *compileState, level int) error {
	if !DevMode() {
		return renderSequence(nodesOf(n.content), st, level)
	}
	st.buf = append(st.buf, '\n')
	st.buf = append(st.buf, strings.Repeat("  ", level+1)...)
	if err := renderSequence(nodesOf(n.content), st, level+1); err != nil {
		return err
	}
	st.buf = append(st.buf, '\n')
	st.buf = append(st.buf, strings.Repeat("  ", level)...)
	return nil
}

func renderParens(n *parensNode, st *compileState, level int) error {
	inner, err := renderToString(n.content, st, level)
	if err != nil {
		return err
	}
	if n.force || !isParensSafe(inner) {
		st.buf = append(st.buf, '(')
		st.buf = append(st.buf, inner...)
		st.buf = append(st.buf, ')')
	} else {
		st.buf = append(st.buf, inner...)
	}
	return nil
}

// renderToString renders f in isolation, returning its text while still
// accumulating values and alias assignments into the shared st, so that a
// Value or Identifier nested inside a Parens still counts toward the same
// running counters as everything around it.
func renderToString(f Fragment, st *compileState, level int) (string, error) {
	saved := st.buf
	st.buf = nil
	err := renderSequence(nodesOf(f), st, level)
	inner := string(st.buf)
	st.buf = saved
	return inner, err
}

func renderPlaceholder(n *placeholderNode, st *compileState, level int) error {
	resolved, ok := st.placeholderValues[n.handle]
	if !ok {
		if n.fallback == nil {
			return wrapf(ErrUnresolvedPlaceholder, "token %q", n.handle.description)
		}
		resolved = n.fallback
	}
	return renderSequence(nodesOf(resolved), st, level)
}

// getAlias returns token's alias, assigning one via assignAlias on first
// use within this compile.
func getAlias(st *compileState, tok Token) string {
	if a, ok := st.aliases[tok.id]; ok {
		return a
	}
	return assignAlias(st, tok)
}

// assignAlias assigns and records the next alias for tok's description:
// "__<description>_" for the first token with that description seen in
// this compile, "__<description>_<n>" for the n-th (n >= 2).
func assignAlias(st *compileState, tok Token) string {
	st.descCount[tok.description]++
	n := st.descCount[tok.description]

	var alias string
	if n == 1 {
		alias = "__" + tok.description + "_"
	} else {
		alias = "__" + tok.description + "_" + strconv.Itoa(n)
	}
	st.aliases[tok.id] = alias
	return alias
}

// applySymbolAlias implements the SymbolAlias resolution rule: a
// conflicting pair of already-different aliases fails; an already-equal
// pair is accepted silently; one bound side donates its alias to the
// other; and if neither is bound, a is assigned a fresh alias as if
// first-seen and b adopts it.
func applySymbolAlias(st *compileState, a, b Token) error {
	aliasA, okA := st.aliases[a.id]
	aliasB, okB := st.aliases[b.id]

	switch {
	case okA && okB:
		if aliasA != aliasB {
			return wrapf(ErrConflictingSymbolAlias, "tokens %q and %q already have different aliases", a.description, b.description)
		}
		return nil
	case okA && !okB:
		st.aliases[b.id] = aliasA
		return nil
	case !okA && okB:
		st.aliases[a.id] = aliasB
		return nil
	default:
		alias := assignAlias(st, a)
		st.aliases[b.id] = alias
		return nil
	}
}

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// collapseBlankLines repeatedly collapses "\n\s*\n" into "\n" until no
// further run of consecutive blank lines remains.
func collapseBlankLines(s string) string {
	for {
		next := blankLineRe.ReplaceAllString(s, "\n")
		if next == s {
			return next
		}
		s = next
	}
}
