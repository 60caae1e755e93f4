package frag

import "fmt"

// ReplaceSymbol returns a fragment equal to f except that every occurrence
// of needle, wherever it appears as an Identifier part, a Placeholder
// handle, a Placeholder fallback, or a SymbolAlias side, is replaced by
// replacement. Raw and Value nodes are returned unchanged, since neither
// can hold a token. Structural sharing is preserved: any subtree with no
// occurrence of needle beneath it is returned as the original pointer,
// not a copy.
func ReplaceSymbol(f any, needle, replacement Token) (Fragment, error) {
	frg, err := requireFragment(f, "replaceSymbol fragment")
	if err != nil {
		return nil, err
	}
	return rewrite(frg, needle, replacement), nil
}

func rewrite(f Fragment, needle, replacement Token) Fragment {
	switch n := f.(type) {
	case *rawNode:
		return n

	case *valueNode:
		return n

	case *identifierNode:
		parts := n.parts
		changed := false
		for i, p := range parts {
			if p.isToken && p.token == needle {
				if !changed {
					parts = append([]identPart(nil), n.parts...)
					changed = true
				}
				parts[i] = identPart{
					token:   replacement,
					isToken: true,
				}
			}
		}
		if !changed {
			return n
		}
		return &identifierNode{mark: newTrustMark(), parts: parts}

	case *indentNode:
		content := rewrite(n.content, needle, replacement)
		if content == n.content {
			return n
		}
		return &indentNode{mark: newTrustMark(), content: content}

	case *parensNode:
		content := rewrite(n.content, needle, replacement)
		if content == n.content {
			return n
		}
		return &parensNode{mark: newTrustMark(), content: content, force: n.force}

	case *symbolAliasNode:
		a, b := n.a, n.b
		changed := false
		if a == needle {
			a = replacement
			changed = true
		}
		if b == needle {
			b = replacement
			changed = true
		}
		if !changed {
			return n
		}
		return &symbolAliasNode{mark: newTrustMark(), a: a, b: b}

	case *placeholderNode:
		handle := n.handle
		fallback := n.fallback
		changed := false
		if handle == needle {
			handle = replacement
			changed = true
		}
		if fallback != nil {
			rewritten := rewrite(fallback, needle, replacement)
			if rewritten != fallback {
				fallback = rewritten
				changed = true
			}
		}
		if !changed {
			return n
		}
		return &placeholderNode{mark: newTrustMark(), handle: handle, fallback: fallback}

	case *queryNode:
		nodes := n.nodes
		changed := false
		for i, child := range nodes {
			rewritten := rewrite(child, needle, replacement)
			if rewritten != child {
				if !changed {
					nodes = append([]Fragment(nil), n.nodes...)
					changed = true
				}
				nodes[i] = rewritten
			}
		}
		if !changed {
			return n
		}
		return &queryNode{mark: newTrustMark(), nodes: nodes, flags: n.flags}

	default:
		panic(fmt.Sprintf("frag: unknown node kind %d: internal invariant violation", f.kind()))
	}
}
