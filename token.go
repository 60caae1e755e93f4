package frag

import (
	"strings"
	"sync/atomic"
)

// tokenSeq hands out process-unique identities for Token values. It is a
// plain counter, not a random UUID: identity only needs to be unique
// within one process lifetime, and a counter is cheaper.
var tokenSeq uint64

// Token is an opaque identifier stand-in: a process-unique identity paired
// with a human-readable hint. Two tokens are equal, for every purpose in
// this package, only if they share the same id — never by comparing
// descriptions. Its final rendered form (its "alias") is assigned during
// Compile, not at construction.
type Token struct {
	id          uint64
	description string // mangled once, at construction
}

// NewToken returns a new Token with a process-unique identity. hint is
// normalized once into a safe, compile-time alias fragment by mangleHint;
// the original hint is not retained.
func NewToken(hint string) Token {
	return Token{
		id:          atomic.AddUint64(&tokenSeq, 1),
		description: mangleHint(hint),
	}
}

// Description returns the mangled description recorded for t at
// construction. It never reflects the alias eventually assigned during a
// particular Compile call.
func (t Token) Description() string {
	return t.description
}

func (t Token) String() string {
	return "token(" + t.description + ")"
}

// TokenDescription is the free-function form of t.Description().
func TokenDescription(t Token) string {
	return t.Description()
}

// withDescription returns a copy of t, with the same identity, carrying a
// freshly mangled description. ReplaceSymbol does not use it: it
// substitutes the replacement token as-is, description included.
func (t Token) withDescription(hint string) Token {
	t.description = mangleHint(hint)
	return t
}

const maxMangledLen = 50

// mangleHint normalizes a human-readable hint into a safe identifier
// fragment: letters are lowered, a run of anything that isn't a letter or
// digit collapses to a single underscore, leading and trailing underscores
// are trimmed, and the result is capped at maxMangledLen bytes. An empty
// result falls back to "local".
func mangleHint(hint string) string {
	var b strings.Builder
	b.Grow(len(hint))

	prevUnderscore := false
	for _, r := range hint {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "_")
	if len(out) > maxMangledLen {
		out = strings.Trim(out[:maxMangledLen], "_")
	}
	if out == "" {
		out = "local"
	}
	return out
}
