package frag

import (
	"strings"
	"testing"
)

func TestCompileIsDeterministic(t *testing.T) {
	must := mustFactory(t)
	build := func() Fragment {
		return must(Template(
			[]string{"select ", " where ", " = ", ""},
			must(Identifier("users", "id")),
			must(Identifier("users", "id")),
			must(Value(1)),
		))
	}

	text1, values1, err := Compile(build())
	if err != nil {
		t.Fatalf("Compile #1: %v", err)
	}
	text2, values2, err := Compile(build())
	if err != nil {
		t.Fatalf("Compile #2: %v", err)
	}
	if text1 != text2 {
		t.Errorf("text1 = %q, text2 = %q, want identical", text1, text2)
	}
	if len(values1) != len(values2) || values1[0] != values2[0] {
		t.Errorf("values1 = %v, values2 = %v, want identical", values1, values2)
	}
}

func TestAliasStabilityWithinOneCompile(t *testing.T) {
	must := mustFactory(t)
	tok := NewToken("id")
	other := NewToken("id") // same description, different identity

	f := must(Template(
		[]string{"", ", ", ", ", ""},
		must(Identifier(tok)),
		must(Identifier(tok)),
		must(Identifier(other)),
	))
	text, _, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	parts := strings.Split(text, ", ")
	if len(parts) != 3 {
		t.Fatalf("text = %q, want 3 comma-separated aliases", text)
	}
	if parts[0] != parts[1] {
		t.Errorf("same token rendered to different aliases: %q vs %q", parts[0], parts[1])
	}
	if parts[0] == parts[2] {
		t.Errorf("distinct tokens sharing a description rendered to the same alias: %q", parts[0])
	}
}

func TestSymbolAliasAdoptsWhenOneSideUnbound(t *testing.T) {
	must := mustFactory(t)
	a := NewToken("u")
	b := NewToken("u")

	f := must(Template(
		[]string{"", "/", "", ""},
		must(Identifier(a)),
		SymbolAlias(a, b),
		must(Identifier(b)),
	))
	text, _, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if text != "__u_/__u_" {
		t.Errorf("text = %q, want %q", text, "__u_/__u_")
	}
}

func TestSymbolAliasAcceptsAlreadyEqualSilently(t *testing.T) {
	must := mustFactory(t)
	a := NewToken("u")
	b := NewToken("u")

	// a binds first; SymbolAlias(a, b) merges b into a's alias (the
	// one-side-unbound case); a second SymbolAlias(a, b) then finds both
	// sides already bound to the same alias and must accept silently.
	f := must(Template(
		[]string{"", "", "", ""},
		must(Identifier(a)),
		SymbolAlias(a, b),
		SymbolAlias(a, b),
	))
	if _, _, err := Compile(f); err != nil {
		t.Errorf("re-applying an already-satisfied SymbolAlias err = %v, want nil", err)
	}
}

func TestSymbolAliasRejectsConflictingPriorAliases(t *testing.T) {
	// Once a and b have each been independently bound to different
	// aliases, a later SymbolAlias(a, b) is a conflict rather than a
	// silent adoption of one side. See DESIGN.md for the reasoning.
	must := mustFactory(t)
	a := NewToken("u")
	b := NewToken("u")

	f := must(Template(
		[]string{"", "/", "", ""},
		must(Identifier(a)),
		must(Identifier(b)),
		SymbolAlias(a, b),
	))
	if _, _, err := Compile(f); !isErr(err, ErrConflictingSymbolAlias) {
		t.Errorf("Compile err = %v, want ErrConflictingSymbolAlias", err)
	}
}

func TestCompileValueCap(t *testing.T) {
	must := mustFactory(t)
	items := make([]any, maxParameters+1)
	for i := range items {
		items[i] = must(Value(i))
	}
	f := must(Join(items, ","))
	if _, _, err := Compile(f); !isErr(err, ErrTooManyParameters) {
		t.Errorf("Compile err = %v, want ErrTooManyParameters", err)
	}
}

func TestCompileRejectsNonFragmentRoot(t *testing.T) {
	if _, _, err := Compile("select 1"); !isErr(err, ErrInvalidFragment) {
		t.Errorf("Compile(bare string) err = %v, want ErrInvalidFragment", err)
	}
}

func TestPlaceholderResolvesFromMap(t *testing.T) {
	must := mustFactory(t)
	handle := NewToken("clause")
	f := must(Template([]string{"where ", ""}, Placeholder(handle)))

	values := map[Token]Fragment{handle: must(Value(1))}
	text, vals, err := Compile(f, WithPlaceholderValues(values))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if text != "where $1" || len(vals) != 1 || vals[0] != 1 {
		t.Errorf("text=%q vals=%v, want %q and [1]", text, vals, "where $1")
	}
}

func TestPlaceholderFallsBackWhenUnmapped(t *testing.T) {
	must := mustFactory(t)
	handle := NewToken("clause")
	fallback := must(Value(0))
	f := must(Template([]string{"where ", ""}, Placeholder(handle, fallback)))

	text, vals, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if text != "where $1" || len(vals) != 1 || vals[0] != 0 {
		t.Errorf("text=%q vals=%v, want %q and [0]", text, vals, "where $1")
	}
}

func TestPlaceholderUnresolvedWithoutFallback(t *testing.T) {
	must := mustFactory(t)
	handle := NewToken("clause")
	f := must(Template([]string{"where ", ""}, Placeholder(handle)))

	if _, _, err := Compile(f); !isErr(err, ErrUnresolvedPlaceholder) {
		t.Errorf("Compile err = %v, want ErrUnresolvedPlaceholder", err)
	}
}

func TestMustCompilePanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic on an invalid fragment")
		}
	}()
	MustCompile("not a fragment")
}

func TestProductionModeStripsIndent(t *testing.T) {
	must := mustFactory(t)
	restore := setDevMode(false)
	defer restore()

	f := must(Indent(must(Value(1))))
	text, _, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if text != "$1" {
		t.Errorf("text = %q, want %q (Indent stripped in production)", text, "$1")
	}
}

func TestDevModeRendersIndent(t *testing.T) {
	must := mustFactory(t)
	restore := setDevMode(true)
	defer restore()

	f := must(Template([]string{"(", ")"}, must(Indent(must(Value(1))))))
	text, _, err := Compile(f)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("text = %q, want a newline from dev-mode Indent", text)
	}
}
