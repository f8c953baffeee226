package label

import (
	"errors"
	"slices"
	"testing"
)

type token struct {
	pos string
}

func newTokenType(t *testing.T) (*Registry, *Type) {
	t.Helper()
	reg := NewRegistry()
	tok, err := reg.Register("Token", StringProperty("pos", func(tk token) string { return tk.pos }))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg, tok
}

func TestSpan(t *testing.T) {
	s := NewSpan(2, 6)
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
	if !s.Contains(Span{3, 6}) || s.Contains(Span{1, 3}) {
		t.Error("Contains mismatch")
	}
	if !s.Overlaps(Span{5, 9}) || s.Overlaps(Span{6, 9}) {
		t.Error("Overlaps mismatch")
	}
	if NoSpan.Valid() {
		t.Error("NoSpan should not be valid")
	}
	if got := s.Text("abcdefgh"); got != "cdef" {
		t.Errorf("Text() = %q, want %q", got, "cdef")
	}
	if got := s.String(); got != "[2, 6)" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewSpanPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewSpan(5, 1) should panic")
		}
	}()
	NewSpan(5, 1)
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same string", String("NOUN"), String("NOUN"), true},
		{"different string", String("NOUN"), String("VERB"), false},
		{"int equals decimal", Int(5), Number(5.0), true},
		{"bool", Bool(true), Bool(true), true},
		{"bool differs", Bool(true), Bool(false), false},
		{"span", SpanValue(Span{1, 2}), SpanValue(Span{1, 2}), true},
		{"kind differs", String("1"), Int(1), false},
		{"invalid", Value{}, Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	reg, tok := newTokenType(t)

	if _, err := reg.Register("Token"); err == nil {
		t.Error("duplicate Register should fail")
	}
	if _, err := reg.Register("Bad", StringProperty("span", func(token) string { return "" })); err == nil {
		t.Error("property shadowing a built-in should fail")
	}
	if err := reg.Alias("tok", "Token"); err != nil {
		t.Fatalf("Alias: %v", err)
	}
	var nameErr *NameError
	if err := reg.Alias("x", "Missing"); !errors.As(err, &nameErr) {
		t.Errorf("Alias to missing type: got %v, want NameError", err)
	}

	for _, name := range []string{"tok", "Token"} {
		got, ok := reg.Resolve(name)
		if !ok || got != tok {
			t.Errorf("Resolve(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := reg.Resolve("nope"); ok {
		t.Error("Resolve(nope) should fail")
	}

	want := []string{"begin", "end", "pos", "span"}
	if got := tok.Properties(); !slices.Equal(got, want) {
		t.Errorf("Properties() = %v, want %v", got, want)
	}
}

func TestLabelProperty(t *testing.T) {
	_, tok := newTokenType(t)
	l := New(tok, Span{3, 7}, token{pos: "NOUN"})

	tests := []struct {
		prop string
		want Value
	}{
		{"pos", String("NOUN")},
		{"span", SpanValue(Span{3, 7})},
		{"begin", Int(3)},
		{"end", Int(7)},
	}
	for _, tt := range tests {
		got, err := l.Property(tt.prop)
		if err != nil {
			t.Fatalf("Property(%q): %v", tt.prop, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("Property(%q) = %v, want %v", tt.prop, got, tt.want)
		}
	}

	var nameErr *NameError
	if _, err := l.Property("lemma"); !errors.As(err, &nameErr) {
		t.Errorf("unknown property: got %v, want NameError", err)
	}

	wrong := New(tok, Span{0, 1}, "not a token")
	var mismatch *TypeMismatchError
	if _, err := wrong.Property("pos"); !errors.As(err, &mismatch) {
		t.Errorf("wrong value type: got %v, want TypeMismatchError", err)
	}
}

func TestAttrProperty(t *testing.T) {
	reg := NewRegistry()
	ent := reg.MustRegister("Entity",
		AttrProperty("kind", KindString),
		AttrProperty("score", KindNumber))
	l := New(ent, Span{0, 4}, Attrs{"kind": String("drug")})

	if v, err := l.Property("kind"); err != nil || v.Str() != "drug" {
		t.Errorf("kind = %v, %v", v, err)
	}
	if v, err := l.Property("score"); err != nil || v.Num() != 0 {
		t.Errorf("missing score = %v, %v; want 0", v, err)
	}
}

func TestSortedIndexWithin(t *testing.T) {
	_, tok := newTokenType(t)
	idx := NewSortedIndex([]Label{
		New(tok, Span{6, 10}, token{}),
		New(tok, Span{0, 5}, token{}),
		New(tok, Span{11, 14}, token{}),
		New(tok, Span{0, 14}, token{}),
	})

	if idx.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", idx.Len())
	}
	first, ok := idx.First()
	if !ok || first.Span != (Span{0, 5}) {
		t.Errorf("First() = %v, want [0, 5)", first)
	}

	tests := []struct {
		within Span
		want   []Span
	}{
		{Span{0, 14}, []Span{{0, 5}, {0, 14}, {6, 10}, {11, 14}}},
		{Span{5, 14}, []Span{{6, 10}, {11, 14}}},
		{Span{0, 10}, []Span{{0, 5}, {6, 10}}},
		{Span{6, 10}, []Span{{6, 10}}},
		{Span{7, 10}, nil},
		{Span{14, 14}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.within.String(), func(t *testing.T) {
			var got []Span
			for l := range idx.Within(tt.within).All() {
				got = append(got, l.Span)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Within(%v) = %v, want %v", tt.within, got, tt.want)
			}
		})
	}

	// Nested restriction intersects.
	nested := idx.Within(Span{0, 10}).Within(Span{5, 14})
	if nested.Len() != 1 {
		t.Errorf("nested Len() = %d, want 1", nested.Len())
	}
}

func TestMemDocument(t *testing.T) {
	_, tok := newTokenType(t)
	doc := NewDocument("dogs bark loud")

	if err := doc.Add(New(tok, Span{5, 9}, token{pos: "VERB"})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if doc.Index(tok).Len() != 1 {
		t.Fatal("index should hold one label")
	}
	// Adding after a read rebuilds the index in order.
	doc.MustAdd(New(tok, Span{0, 4}, token{pos: "NOUN"}))
	first, _ := doc.Index(tok).First()
	if first.Span != (Span{0, 4}) {
		t.Errorf("First() = %v, want [0, 4)", first.Span)
	}
	if got := doc.Covered(first.Span); got != "dogs" {
		t.Errorf("Covered = %q", got)
	}

	if err := doc.Add(New(tok, Span{10, 20}, token{})); err == nil {
		t.Error("label outside the document should be rejected")
	}
	if err := doc.Add(Label{Span: Span{0, 1}}); err == nil {
		t.Error("untyped label should be rejected")
	}

	other := NewRegistry().MustRegister("Other")
	if doc.Index(other).Len() != 0 {
		t.Error("unknown type should give an empty index")
	}
}
