package frag

import "testing"

func TestReplaceSymbolSelfReplacementIsEquivalent(t *testing.T) {
	must := mustFactory(t)
	tok := NewToken("u")
	f := must(Template([]string{"", "/", ""}, must(Identifier(tok)), must(Value(1))))

	rewritten, err := ReplaceSymbol(f, tok, tok)
	if err != nil {
		t.Fatalf("ReplaceSymbol: %v", err)
	}
	ok, err := IsEquivalent(f, rewritten)
	if err != nil {
		t.Fatalf("IsEquivalent: %v", err)
	}
	if !ok {
		t.Error("ReplaceSymbol(f, s, s) is not equivalent to f")
	}
}

func TestReplaceSymbolReplacesExactOccurrences(t *testing.T) {
	must := mustFactory(t)
	a := NewToken("a")
	b := NewToken("b")
	replacement := NewToken("c")

	f := must(Template(
		[]string{"", ".", "", ""},
		must(Identifier(a)),
		must(Identifier(b)),
		must(Identifier(a)),
	))
	rewritten, err := ReplaceSymbol(f, a, replacement)
	if err != nil {
		t.Fatalf("ReplaceSymbol: %v", err)
	}

	text, _, err := Compile(rewritten)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	wantAlias := "__" + replacement.Description() + "_"
	bAlias := "__" + b.Description() + "_"
	want := wantAlias + "." + bAlias + wantAlias
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestReplaceSymbolPreservesStructuralSharing(t *testing.T) {
	must := mustFactory(t)
	a := NewToken("a")
	untouched := NewToken("u")
	replacement := NewToken("z")

	inner := must(Identifier(untouched))
	f := must(Template([]string{"", ".", ""}, must(Identifier(a)), inner))

	rewritten, err := ReplaceSymbol(f, a, replacement)
	if err != nil {
		t.Fatalf("ReplaceSymbol: %v", err)
	}

	rq, ok := rewritten.(*queryNode)
	if !ok {
		t.Fatalf("rewritten is %T, want *queryNode", rewritten)
	}
	found := false
	for _, n := range rq.nodes {
		if n == inner {
			found = true
		}
	}
	if !found {
		t.Error("ReplaceSymbol allocated a new node for a subtree containing no occurrence of needle")
	}
}

func TestReplaceSymbolRawAndValueUnchanged(t *testing.T) {
	must := mustFactory(t)
	needle := NewToken("n")
	replacement := NewToken("r")

	raw := Raw("select 1")
	rewrittenRaw, err := ReplaceSymbol(raw, needle, replacement)
	if err != nil {
		t.Fatalf("ReplaceSymbol(Raw): %v", err)
	}
	if rewrittenRaw != raw {
		t.Error("ReplaceSymbol changed a Raw node, which can hold no token")
	}

	val := must(Value(1))
	rewrittenVal, err := ReplaceSymbol(val, needle, replacement)
	if err != nil {
		t.Fatalf("ReplaceSymbol(Value): %v", err)
	}
	if rewrittenVal != val {
		t.Error("ReplaceSymbol changed a Value node, which can hold no token")
	}
}

func TestReplaceSymbolRejectsNonFragment(t *testing.T) {
	needle := NewToken("n")
	replacement := NewToken("r")
	if _, err := ReplaceSymbol("not a fragment", needle, replacement); !isErr(err, ErrInvalidFragment) {
		t.Errorf("ReplaceSymbol(bare string, ...) err = %v, want ErrInvalidFragment", err)
	}
}
