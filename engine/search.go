package engine

import (
	"fmt"
	"slices"

	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

// Engine executes one compiled automaton.
type Engine struct {
	aut    *automaton.Automaton
	config Config
	// types are the distinct label types the automaton matches
	types []*label.Type
}

// New creates an engine for a. Zero config fields take their defaults.
func New(a *automaton.Automaton, config Config) *Engine {
	if config.MaxCallDepth <= 0 {
		config.MaxCallDepth = DefaultMaxCallDepth
	}
	var types []*label.Type
	for i := 0; i < a.Len(); i++ {
		n := a.Node(automaton.NodeID(i))
		if n.Kind() != automaton.KindMatch {
			continue
		}
		if t, _, _, _ := n.Match(); !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	return &Engine{aut: a, config: config, types: types}
}

// Automaton returns the compiled automaton
func (e *Engine) Automaton() *automaton.Automaton {
	return e.aut
}

// Search runs the automaton once over span of doc and returns the search
// handle. The returned error is non-nil only when the attempt was aborted
// (a type mismatch or ErrDepthExceeded) or the arguments are unusable; an
// ordinary non-match is reported through Found.
func (e *Engine) Search(doc label.Document, span label.Span) (*Search, error) {
	if doc == nil {
		return nil, fmt.Errorf("engine: nil document")
	}
	if !span.Valid() || !doc.Span().Contains(span) {
		return nil, fmt.Errorf("engine: search span %s outside document %s", span, doc.Span())
	}
	s := newSearch(e, doc, span)
	s.found = s.run()
	if s.err != nil {
		return s, s.err
	}
	return s, nil
}

// Search is the state of one search over one document span: the cursor,
// the capture groups and the scratch locals. It finds one match at a time;
// FindNext continues from the end of the previous match.
//
// A Search must not be used from several goroutines at once.
type Search struct {
	aut      *automaton.Automaton
	doc      label.Document
	types    []*label.Type
	maxDepth int

	// cursor: the span most recently consumed, and the search bound
	begin, end int
	limit      int

	groups []int
	labels []label.Label
	locals []int

	// trail holds the begin offsets of labels consumed on the current path.
	trail []int
	depth int
	err   error

	found bool
	match label.Span
}

func newSearch(e *Engine, doc label.Document, span label.Span) *Search {
	s := &Search{
		aut:      e.aut,
		doc:      doc,
		types:    e.types,
		maxDepth: e.config.MaxCallDepth,
		begin:    span.Begin,
		end:      span.Begin,
		limit:    span.End,
		groups:   make([]int, 2*e.aut.NumGroups()),
		labels:   make([]label.Label, e.aut.NumGroups()),
		locals:   make([]int, e.aut.NumLocals()),
		match:    label.NoSpan,
	}
	s.clearGroups()
	return s
}

func (s *Search) clearGroups() {
	for i := range s.groups {
		s.groups[i] = -1
	}
	clear(s.labels)
}

// run makes one attempt from the current cursor.
func (s *Search) run() bool {
	s.trail = s.trail[:0]
	s.depth = 0
	clear(s.locals)
	if !s.exec(s.aut.Root()) {
		s.match = label.NoSpan
		return false
	}
	begin := s.end
	if len(s.trail) > 0 {
		begin = s.trail[0]
	}
	s.match = label.Span{Begin: begin, End: s.end}
	return true
}

// Found reports whether the last attempt found a match
func (s *Search) Found() bool {
	return s.found
}

// Span returns the span of the current match, or label.NoSpan if the last
// attempt failed.
func (s *Search) Span() label.Span {
	return s.match
}

// Err returns the error that aborted the last attempt, if any
func (s *Search) Err() error {
	return s.err
}

// NumGroups returns the number of capture groups
func (s *Search) NumGroups() int {
	return len(s.labels)
}

// Group returns the span captured by group g, or label.NoSpan if it is
// unset or out of range.
func (s *Search) Group(g int) label.Span {
	if g < 0 || 2*g+1 >= len(s.groups) || s.groups[2*g] < 0 {
		return label.NoSpan
	}
	return label.Span{Begin: s.groups[2*g], End: s.groups[2*g+1]}
}

// Groups returns the spans of all capture groups in index order
func (s *Search) Groups() []label.Span {
	out := make([]label.Span, len(s.labels))
	for g := range out {
		out[g] = s.Group(g)
	}
	return out
}

// SpanOf returns the last span written to the named group.
// It returns label.NoSpan if the group did not participate in the match,
// and a *label.NameError if no group has that name.
func (s *Search) SpanOf(name string) (label.Span, error) {
	g, ok := s.aut.GroupIndex(name)
	if !ok {
		return label.NoSpan, &label.NameError{Kind: "group", Name: name}
	}
	return s.Group(g), nil
}

// LabelOf returns the label captured by the named typed group. ok is false
// when the group is untyped or did not participate in the match.
func (s *Search) LabelOf(name string) (l label.Label, ok bool, err error) {
	g, found := s.aut.GroupIndex(name)
	if !found {
		return label.Label{}, false, &label.NameError{Kind: "group", Name: name}
	}
	l = s.labels[g]
	return l, !l.IsZero(), nil
}

// FindNext clears the groups, keeps the cursor where the previous match
// ended and looks for the next match. It returns an *IllegalStateError if
// the previous attempt did not find a match.
//
// An empty match is never reported at the offset where the previous match
// ended. Instead the cursor moves to the begin of the next label the pattern
// can match, so later matches are still found.
func (s *Search) FindNext() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if !s.found {
		return false, &IllegalStateError{Op: "FindNext", Reason: "no prior successful match"}
	}
	prev := s.match
	if prev.Len() == 0 && !s.advance(prev.End) {
		return s.exhausted()
	}
	for {
		s.clearGroups()
		s.found = s.run()
		if s.err != nil {
			s.found = false
			return false, s.err
		}
		if !s.found {
			return false, nil
		}
		if s.match.Len() > 0 || s.match.End != prev.End {
			return true, nil
		}
		if !s.advance(s.match.End) {
			return s.exhausted()
		}
	}
}

func (s *Search) exhausted() (bool, error) {
	s.found = false
	s.match = label.NoSpan
	return false, nil
}

// advance moves the cursor to the smallest begin offset after at of any
// label the automaton can match. It reports false if there is none before
// the limit.
func (s *Search) advance(at int) bool {
	if at >= s.limit {
		return false
	}
	next := -1
	for _, t := range s.types {
		l, ok := s.doc.Index(t).Within(label.NewSpan(at+1, s.limit)).First()
		if ok && (next < 0 || l.Begin < next) {
			next = l.Begin
		}
	}
	if next < 0 {
		return false
	}
	s.begin, s.end = next, next
	return true
}
