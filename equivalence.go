package frag

import "fmt"

// equivOptions holds IsEquivalent's optional settings.
type equivOptions struct {
	symbolSubstitutes map[Token]Token
}

// EquivOption configures a single IsEquivalent call.
type EquivOption func(*equivOptions)

// WithSymbolSubstitutes supplies a mapping that treats a token found on
// the left-hand fragment as identical to the token it maps to, when
// comparing to the right-hand fragment. A token absent from the map is
// compared by identity.
func WithSymbolSubstitutes(m map[Token]Token) EquivOption {
	return func(o *equivOptions) { o.symbolSubstitutes = m }
}

// IsEquivalent reports whether a and b denote the same fragment, up to an
// optional symbol substitution. Reference equality (the same node,
// pointer-identical) always short-circuits to true. A SymbolAlias node is
// never equivalent to anything, including another SymbolAlias node with
// the same tokens, since it declares an effect on compilation rather than
// denoting a value.
func IsEquivalent(a, b any, opts ...EquivOption) (bool, error) {
	fa, err := requireFragment(a, "isEquivalent left operand")
	if err != nil {
		return false, err
	}
	fb, err := requireFragment(b, "isEquivalent right operand")
	if err != nil {
		return false, err
	}

	var cfg equivOptions
	for _, o := range opts {
		o(&cfg)
	}
	return equivalent(fa, fb, cfg.symbolSubstitutes)
}

func equivalent(a, b Fragment, sub map[Token]Token) (bool, error) {
	if a == b {
		return true, nil
	}
	if a.kind() != b.kind() {
		return false, nil
	}

	switch a.kind() {
	case kindQuery:
		qa, qb := a.(*queryNode), b.(*queryNode)
		if len(qa.nodes) != len(qb.nodes) {
			return false, nil
		}
		for i := range qa.nodes {
			ok, err := equivalent(qa.nodes[i], qb.nodes[i], sub)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case kindRaw:
		return a.(*rawNode).text == b.(*rawNode).text, nil

	case kindValue:
		return scalarEqual(a.(*valueNode).value, b.(*valueNode).value), nil

	case kindIndent:
		return equivalent(a.(*indentNode).content, b.(*indentNode).content, sub)

	case kindParens:
		pa, pb := a.(*parensNode), b.(*parensNode)
		if pa.force != pb.force {
			return false, nil
		}
		return equivalent(pa.content, pb.content, sub)

	case kindIdentifier:
		ia, ib := a.(*identifierNode), b.(*identifierNode)
		if len(ia.parts) != len(ib.parts) {
			return false, nil
		}
		for i := range ia.parts {
			pa, pb := ia.parts[i], ib.parts[i]
			if pa.isToken != pb.isToken {
				return false, nil
			}
			if !pa.isToken {
				if pa.quoted != pb.quoted {
					return false, nil
				}
				continue
			}
			// Handle equality already implies description equality for
			// any token that passed through NewToken/withDescription: a
			// Token's description is fixed at construction and travels
			// with its identity, so there is no reachable state where
			// two equal-by-substitution handles carry different
			// descriptions. A separate description comparison would be
			// vacuous here, for the same reason comparing a token to a
			// scalar value by identity is vacuous once tokens and values
			// are distinct, non-overlapping Go types.
			ok, err := tokenEquivalent(pa.token, pb.token, sub)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case kindPlaceholder:
		pa, pb := a.(*placeholderNode), b.(*placeholderNode)
		return tokenEquivalent(pa.handle, pb.handle, sub)

	case kindSymbolAlias:
		return false, nil

	default:
		panic(fmt.Sprintf("frag: unknown node kind %d: internal invariant violation", a.kind()))
	}
}

const maxSubstitutionHops = 1000

// resolveSubstitute follows sub from t to its final value, bounded at
// maxSubstitutionHops. A token mapping directly to itself is
// ErrSelfSubstitution; a longer cycle is ErrSubstitutionCycle; a token
// absent from sub resolves to itself unchanged.
func resolveSubstitute(t Token, sub map[Token]Token) (Token, error) {
	visited := make(map[Token]bool, 4)
	cur := t
	for i := 0; i < maxSubstitutionHops; i++ {
		visited[cur] = true
		next, ok := sub[cur]
		if !ok {
			return cur, nil
		}
		if next == cur {
			return Token{}, wrapf(ErrSelfSubstitution, "token %q", cur.description)
		}
		if visited[next] {
			return Token{}, wrapf(ErrSubstitutionCycle, "token %q", t.description)
		}
		cur = next
	}
	return Token{}, wrapf(ErrSubstitutionCycle, "token %q exceeded %d hops", t.description, maxSubstitutionHops)
}

// tokenEquivalent compares t1 (from the left-hand fragment) to t2 (from
// the right-hand fragment): t1 is first resolved through sub, then
// compared to t2 by identity.
func tokenEquivalent(t1, t2 Token, sub map[Token]Token) (bool, error) {
	resolved, err := resolveSubstitute(t1, sub)
	if err != nil {
		return false, err
	}
	return resolved == t2, nil
}

// scalarEqual compares two Value scalars. []byte is compared by content;
// everything else is compared via its %#v representation, a type-sensitive
// comparison that treats e.g. int(5) and int64(5) as distinct, matching
// how Compile would bind them as different driver argument types.
func scalarEqual(a, b any) bool {
	ab, aIsBytes := a.([]byte)
	bb, bIsBytes := b.([]byte)
	if aIsBytes || bIsBytes {
		if !(aIsBytes && bIsBytes) {
			return false
		}
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	}
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
