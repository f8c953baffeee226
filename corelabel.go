// Package corelabel provides regular-expression style searches over labels:
// typed, attributed spans of a document such as tokens, entities or
// sentences.
//
// A pattern matches a sequence of labels rather than characters. Each
// element names a label type, optionally binds the matched label to a
// variable and constrains its properties:
//
//	Token:a{pos="NOUN"} Token{pos="VERB"}
//
// Patterns support capture groups, greedy, lazy and possessive quantifiers,
// lookaheads, atomic groups, pinned conjunctions and backreferences to
// earlier captures.
//
// Basic usage:
//
//	reg := label.NewRegistry()
//	tok := reg.MustRegister("Token", label.StringProperty("pos", func(t Tok) string { return t.Pos }))
//
//	p, err := corelabel.Compile(reg, `Token:a{pos="NOUN"} Token{pos="VERB"}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	matches, err := p.FindAll(doc, -1)
//
// A Pattern is immutable and safe for concurrent use; every search gets its
// own state.
package corelabel

import (
	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/engine"
	"github.com/coregx/corelabel/label"
	"github.com/coregx/corelabel/syntax"
)

// Pattern is a compiled label pattern.
//
// Example:
//
//	p := corelabel.MustCompile(reg, `Token{pos="DET"}? Token{pos="NOUN"}`)
//	found, err := p.IsMatch(doc)
type Pattern struct {
	engine  *engine.Engine
	pattern string
	config  Config
	names   []string
}

// Compile compiles pattern, resolving type names and aliases with r.
//
// It returns a *syntax.Error on failure. The error wraps a *label.NameError
// for unknown types, groups or properties and a *label.TypeMismatchError for
// values of the wrong kind.
func Compile(r label.Resolver, pattern string) (*Pattern, error) {
	return CompileWithConfig(r, pattern, DefaultConfig())
}

// MustCompile is like Compile but panics if the pattern does not compile.
//
// Example:
//
//	var nounPhrase = corelabel.MustCompile(reg, `Token{pos="ADJ"}* Token{pos="NOUN"}`)
func MustCompile(r label.Resolver, pattern string) *Pattern {
	p, err := Compile(r, pattern)
	if err != nil {
		panic("corelabel: Compile(`" + pattern + "`): " + err.Error())
	}
	return p
}

// CompileWithConfig compiles a pattern with custom limits.
//
// Example:
//
//	config := corelabel.DefaultConfig()
//	config.LoopLimit = 100
//	p, err := corelabel.CompileWithConfig(reg, `Token+`, config)
func CompileWithConfig(r label.Resolver, pattern string, config Config) (*Pattern, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	a, err := syntax.Compile(r, pattern, syntax.CompilerConfig{
		LoopLimit:       config.LoopLimit,
		MaxNestingDepth: config.MaxNestingDepth,
	})
	if err != nil {
		return nil, err
	}
	return &Pattern{
		engine:  engine.New(a, engine.Config{MaxCallDepth: config.MaxCallDepth}),
		pattern: pattern,
		config:  config,
		names:   a.GroupNames(),
	}, nil
}

// String returns the source text of the pattern
func (p *Pattern) String() string {
	return p.pattern
}

// NumGroups returns the number of capture groups, named or not,
// including typed variables.
func (p *Pattern) NumGroups() int {
	return p.engine.Automaton().NumGroups()
}

// GroupNames returns the group names in index order. Unnamed groups have an
// empty name.
func (p *Pattern) GroupNames() []string {
	return append([]string(nil), p.names...)
}

// Automaton returns the compiled automaton, mostly useful for debugging
// with its String method.
func (p *Pattern) Automaton() *automaton.Automaton {
	return p.engine.Automaton()
}

// Search runs the pattern once over the whole document and returns the
// search handle. Use FindNext on the handle to continue after a match.
func (p *Pattern) Search(doc label.Document) (*engine.Search, error) {
	if doc == nil {
		return p.engine.Search(nil, label.NoSpan)
	}
	return p.engine.Search(doc, doc.Span())
}

// SearchSpan is like Search but only considers labels inside span.
func (p *Pattern) SearchSpan(doc label.Document, span label.Span) (*engine.Search, error) {
	return p.engine.Search(doc, span)
}

// IsMatch reports whether p has a match from the start of doc's span.
// Without a leading seek the match begins at the first label at or after
// that offset; IsMatch does not look for later matches.
func (p *Pattern) IsMatch(doc label.Document) (bool, error) {
	s, err := p.Search(doc)
	if err != nil {
		return false, err
	}
	return s.Found(), nil
}

// Find returns the first match in doc. ok is false if there is none.
func (p *Pattern) Find(doc label.Document) (m Match, ok bool, err error) {
	all, err := p.FindAll(doc, 1)
	if err != nil || len(all) == 0 {
		return Match{}, false, err
	}
	return all[0], true, nil
}

// FindAll returns successive matches of the pattern in doc.
// If n >= 0, it returns at most n matches. If n < 0, it returns all matches.
//
// Example:
//
//	p := corelabel.MustCompile(reg, `[?Token{pos="VERB"}]`)
//	verbs, err := p.FindAll(doc, -1)
func (p *Pattern) FindAll(doc label.Document, n int) ([]Match, error) {
	if n == 0 {
		return nil, nil
	}
	s, err := p.Search(doc)
	if err != nil {
		return nil, err
	}
	var matches []Match
	for found := s.Found(); found; {
		matches = append(matches, p.collect(s))
		if n > 0 && len(matches) >= n {
			break
		}
		if found, err = s.FindNext(); err != nil {
			return matches, err
		}
	}
	return matches, nil
}

func (p *Pattern) collect(s *engine.Search) Match {
	m := Match{
		Span:   s.Span(),
		Groups: s.Groups(),
		Labels: make([]label.Label, s.NumGroups()),
		names:  p.names,
	}
	for g, name := range p.names {
		if name == "" {
			continue
		}
		if l, ok, _ := s.LabelOf(name); ok {
			m.Labels[g] = l
		}
	}
	return m
}

// Match is one match of a pattern.
type Match struct {
	// Span covers the matched labels.
	Span label.Span
	// Groups holds the span of every capture group in index order;
	// label.NoSpan marks a group that did not participate.
	Groups []label.Span
	// Labels holds the label captured by each typed variable in index
	// order. Other groups hold the zero Label.
	Labels []label.Label

	names []string
}

// Group returns the span captured by the named group, or label.NoSpan.
func (m Match) Group(name string) label.Span {
	for g, n := range m.names {
		if n == name && name != "" {
			return m.Groups[g]
		}
	}
	return label.NoSpan
}

// Label returns the label captured by the named typed variable.
func (m Match) Label(name string) (label.Label, bool) {
	for g, n := range m.names {
		if n == name && name != "" {
			return m.Labels[g], !m.Labels[g].IsZero()
		}
	}
	return label.Label{}, false
}
