package syntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

type word struct {
	pos  string
	freq float64
	stop bool
}

func testResolver() *label.Registry {
	reg := label.NewRegistry()
	reg.MustRegister("Token",
		label.StringProperty("pos", func(w word) string { return w.pos }),
		label.NumberProperty("freq", func(w word) float64 { return w.freq }),
		label.BoolProperty("stop", func(w word) bool { return w.stop }),
	)
	reg.MustRegister("Sentence")
	if err := reg.Alias("Tok", "Token"); err != nil {
		panic(err)
	}
	return reg
}

func mustCompile(t *testing.T, pattern string) *automaton.Automaton {
	t.Helper()
	a, err := Compile(testResolver(), pattern, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return a
}

// countKinds counts the arena nodes of each kind.
func countKinds(a *automaton.Automaton) map[automaton.Kind]int {
	counts := make(map[automaton.Kind]int)
	for i := 0; i < a.Len(); i++ {
		counts[a.Node(automaton.NodeID(i)).Kind()]++
	}
	return counts
}

func TestCompile_Valid(t *testing.T) {
	patterns := []string{
		``,
		`Token`,
		`Tok`,
		`  Token   Token  `,
		`Token{pos="NOUN"}`,
		`Token{pos="a \"quoted\" tag"}`,
		`Token{freq=3}`,
		`Token{freq=-2.5}`,
		`Token{stop=true}`,
		`Token{stop=No}`,
		`Token{pos="NOUN", freq=1, stop=false}`,
		`Token:a Token{pos=$a.pos}`,
		`Token:a Token{span=$a}`,
		`(?<g>Token Token) Sentence{span=$g}`,
		`Token{begin=0}`,
		`Token | Sentence`,
		`(Token | Sentence)+`,
		`(?:Token)*`,
		`(?=Token)`,
		`(?!Token)`,
		`(?>Token+)`,
		`[Sentence & Token & Token{pos="VERB"}]`,
		`[?Sentence & Token+]`,
		`[ ?Token]`,
		`[ ? Token{pos="VERB"} ]`,
		`Token?`, `Token??`, `Token?+`,
		`Token*`, `Token*?`, `Token*+`,
		`Token+`, `Token+?`, `Token++`,
		`Token{2}`, `Token{2,}`, `Token{2,5}`, `Token{ 2 , 5 }?`,
		`Token{pos="N"}{2,3}`,
		`Token{0}`,
		`Token|`,
		`()`,
	}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			a := mustCompile(t, pattern)
			if a.Pattern() != pattern {
				t.Errorf("Pattern() = %q, want %q", a.Pattern(), pattern)
			}
			if a.Node(a.Root()) == nil {
				t.Errorf("root %d is not a node", a.Root())
			}
			reach := a.Reachable()
			if len(reach) == 0 || reach[0] != a.Root() || len(reach) > a.Len() {
				t.Errorf("Reachable() = %v for root %d and %d nodes", reach, a.Root(), a.Len())
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		offset  int
		message string
	}{
		{`Nope`, 0, "couldn't find a type"},
		{`Token{nope=1}`, 6, "has no property"},
		{`Token{pos=1}`, 10, "property Token.pos is string, not number"},
		{`Token{pos=`, 10, "illegal property value"},
		{`Token{pos="x"`, 5, "unclosed property list"},
		{`Token{pos="x`, 10, "unterminated string"},
		{`Token{pos="x";}`, 13, "expected ',' or '}'"},
		{`(Token`, 0, "unclosed group"},
		{`Token)`, 5, "unmatched ')'"},
		{`Token]`, 5, "unmatched ']'"},
		{`[Token`, 0, "unclosed pinning bracket"},
		{`[Token Token]`, 7, "expected '&' or ']'"},
		{`Token{3,2}`, 5, "illegal range {3,2}"},
		{`Token{2`, 7, "unclosed curly bracket repetition"},
		{`(?<a>Token) (?<a>Token)`, 12, "duplicate capturing group name"},
		{`Token:a Token:a`, 14, "duplicate capturing group name"},
		{`(?<a Token)`, 4, "non alphanumeric character"},
		{`(?%Token)`, 2, "unknown group flag"},
		{`Token{pos=$x}`, 11, "unknown group"},
		{`Token{pos=$}`, 11, "missing backreference group name"},
		{`Token:a Token{pos=$a}`, 19, "span backreference"},
		{`Token:a Token{pos=$a.}`, 21, "missing backreference property name"},
		{`Token:a Token{pos=$a.nope}`, 21, "has no property"},
		{`Token:a Token{pos=$a.freq}`, 21, "is number, not string"},
		{`(?<g>Token) Token{pos=$g.pos}`, 23, "does not capture a label"},
		{`Token:a{pos=$a.pos}`, 13, "unknown group"},
		{`*`, 0, "illegal identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			a, err := Compile(testResolver(), tt.pattern, DefaultCompilerConfig())
			if err == nil {
				t.Fatalf("Compile(%q) = %v, want error", tt.pattern, a)
			}
			var synErr *Error
			if !errors.As(err, &synErr) {
				t.Fatalf("error %v is %T, want *Error", err, err)
			}
			if synErr.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d (%v)", synErr.Offset, tt.offset, err)
			}
			if !strings.Contains(synErr.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", synErr.Message, tt.message)
			}
			if !strings.HasPrefix(err.Error(), "error parsing label pattern at offset ") {
				t.Errorf("Error() = %q", err.Error())
			}
		})
	}
}

func TestCompile_TypedErrors(t *testing.T) {
	_, err := Compile(testResolver(), `Token{pos=1}`, DefaultCompilerConfig())
	var mismatch *label.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error %v does not wrap *label.TypeMismatchError", err)
	}
	if mismatch.Want != label.KindString || mismatch.Got != label.KindNumber {
		t.Errorf("mismatch = %+v", mismatch)
	}

	_, err = Compile(testResolver(), `Nope`, DefaultCompilerConfig())
	var nameErr *label.NameError
	if !errors.As(err, &nameErr) || nameErr.Kind != "type" || nameErr.Name != "Nope" {
		t.Errorf("error %v, want type NameError for Nope", err)
	}
}

func TestCompile_NoResolver(t *testing.T) {
	if _, err := Compile(nil, `Token`, DefaultCompilerConfig()); err == nil {
		t.Error("expected error without a resolver")
	}
}

func TestCompile_Nesting(t *testing.T) {
	config := DefaultCompilerConfig()
	config.MaxNestingDepth = 2
	if _, err := Compile(testResolver(), `((Token))`, config); err != nil {
		t.Errorf("depth 2 failed: %v", err)
	}
	_, err := Compile(testResolver(), `(([Token]))`, config)
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Errorf("error = %v, want ErrNestingTooDeep", err)
	}
}

func TestCompile_LoopLimit(t *testing.T) {
	config := DefaultCompilerConfig()
	config.LoopLimit = 5
	a, err := Compile(testResolver(), `Token*`, config)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < a.Len(); i++ {
		n := a.Node(automaton.NodeID(i))
		if n.Kind() == automaton.KindLoop {
			if min, max := n.Bounds(); min != 0 || max != 5 {
				t.Errorf("Bounds() = {%d,%d}, want {0,5}", min, max)
			}
		}
	}
	if _, err := Compile(testResolver(), `Token{6,}`, config); err == nil {
		t.Error("expected error for {6,} above loop limit 5")
	}
	if _, err := Compile(testResolver(), `Token{1,50}`, config); err != nil {
		t.Errorf("explicit bound above loop limit failed: %v", err)
	}
}

func TestCompile_Groups(t *testing.T) {
	a := mustCompile(t, `(?<np>Token:adj{pos="ADJ"}* Token:n) (Token) Token:v`)
	if a.NumGroups() != 5 {
		t.Fatalf("NumGroups() = %d, want 5", a.NumGroups())
	}
	want := []string{"np", "adj", "n", "", "v"}
	got := a.GroupNames()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GroupNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if a.GroupType(0) != nil {
		t.Error("named group should be untyped")
	}
	if typ := a.GroupType(1); typ == nil || typ.Name() != "Token" {
		t.Errorf("GroupType(1) = %v, want Token", typ)
	}
	if g, ok := a.GroupIndex("v"); !ok || g != 4 {
		t.Errorf("GroupIndex(v) = %d, %v", g, ok)
	}
}

func TestCompile_Shape(t *testing.T) {
	tests := []struct {
		pattern string
		want    map[automaton.Kind]int
	}{
		{`Token`, map[automaton.Kind]int{automaton.KindAccept: 1, automaton.KindMatch: 1}},
		{`Token Token`, map[automaton.Kind]int{
			automaton.KindAccept: 1, automaton.KindMatch: 2,
			automaton.KindSaveBegin: 1, automaton.KindLoadBegin: 1,
		}},
		{`Token | Sentence`, map[automaton.Kind]int{
			automaton.KindAccept: 1, automaton.KindMatch: 2,
			automaton.KindBranch: 1, automaton.KindNoop: 1,
		}},
		{`Token*`, map[automaton.Kind]int{
			automaton.KindAccept: 1, automaton.KindMatch: 1,
			automaton.KindLoop: 1, automaton.KindLoopEnter: 1,
		}},
		{`[Sentence & Token]`, map[automaton.Kind]int{
			automaton.KindAccept: 1, automaton.KindMatch: 2, automaton.KindPin: 1,
		}},
		{`(?<g>Token)`, map[automaton.Kind]int{
			automaton.KindAccept: 1, automaton.KindMatch: 1,
			automaton.KindSaveBegin: 1, automaton.KindLoadBegin: 1, automaton.KindGroupEnd: 1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := countKinds(mustCompile(t, tt.pattern))
			if len(got) != len(tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
			for k, n := range tt.want {
				if got[k] != n {
					t.Errorf("%s count = %d, want %d", k, got[k], n)
				}
			}
		})
	}
}

func TestCompile_RangeAfterProperties(t *testing.T) {
	a := mustCompile(t, `Token{pos="N"}{2,3}`)
	var loops, constrained int
	for i := 0; i < a.Len(); i++ {
		n := a.Node(automaton.NodeID(i))
		switch n.Kind() {
		case automaton.KindLoop:
			loops++
			if min, max := n.Bounds(); min != 2 || max != 3 {
				t.Errorf("Bounds() = {%d,%d}, want {2,3}", min, max)
			}
		case automaton.KindMatch:
			if _, _, _, cs := n.Match(); len(cs) == 1 {
				constrained++
			}
		}
	}
	if loops != 1 || constrained != 1 {
		t.Errorf("loops = %d, constrained matches = %d", loops, constrained)
	}
}

func TestCompile_Seek(t *testing.T) {
	for _, pattern := range []string{`[?Token{pos="VERB"}]`, `[ ?Token{pos="VERB"}]`, `[	? Token ]`} {
		a := mustCompile(t, pattern)
		n := a.Node(a.Root())
		if _, seek, _, _ := n.Match(); n.Kind() != automaton.KindMatch || !seek {
			t.Errorf("%s: root = %s, want a seeking match", pattern, n)
		}
	}
}

func TestCompile_Bool(t *testing.T) {
	for pattern, want := range map[string]bool{
		`Token{stop=true}`:  true,
		`Token{stop=Yes}`:   true,
		`Token{stop=false}`: false,
		`Token{stop=n}`:     false,
	} {
		a := mustCompile(t, pattern)
		_, _, _, cs := a.Node(a.Root()).Match()
		if len(cs) != 1 || cs[0].Literal.Truth() != want {
			t.Errorf("%s: constraints = %v, want stop=%v", pattern, cs, want)
		}
	}
}
