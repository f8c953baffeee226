package engine

import (
	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

// snapshot is a copy of everything a sub-chain may write. Nodes that commit
// to a sub-chain before running their continuation take one so they can
// undo the sub-chain if the continuation fails.
type snapshot struct {
	begin, end, limit int
	trail             int
	groups            []int
	labels            []label.Label
	locals            []int
}

func (s *Search) snapshot() snapshot {
	return snapshot{
		begin:  s.begin,
		end:    s.end,
		limit:  s.limit,
		trail:  len(s.trail),
		groups: append([]int(nil), s.groups...),
		labels: append([]label.Label(nil), s.labels...),
		locals: append([]int(nil), s.locals...),
	}
}

func (s *Search) restore(sn *snapshot) {
	s.begin, s.end, s.limit = sn.begin, sn.end, sn.limit
	s.trail = s.trail[:sn.trail]
	copy(s.groups, sn.groups)
	copy(s.labels, sn.labels)
	copy(s.locals, sn.locals)
}

// exec runs the chain starting at id. It returns true once the whole
// continuation up to Accept has matched. On false the search state is as it
// was on entry.
func (s *Search) exec(id automaton.NodeID) bool {
	if s.err != nil {
		return false
	}
	s.depth++
	if s.depth > s.maxDepth {
		s.err = ErrDepthExceeded
		s.depth--
		return false
	}

	n := s.aut.Node(id)
	var ok bool
	switch n.Kind() {
	case automaton.KindAccept:
		ok = true
	case automaton.KindMatch:
		ok = s.execMatch(n)
	case automaton.KindBranch:
		ok = s.execBranch(n)
	case automaton.KindOptional:
		ok = s.execOptional(n)
	case automaton.KindLoopEnter:
		ok = s.execLoopEnter(n)
	case automaton.KindLoop:
		ok = s.execLoop(n)
	case automaton.KindLookahead:
		ok = s.execLookahead(n)
	case automaton.KindAtomic:
		ok = s.execAtomic(n)
	case automaton.KindPin:
		ok = s.execPin(n)
	case automaton.KindSaveBegin:
		ok = s.execSaveBegin(n)
	case automaton.KindLoadBegin:
		ok = s.execLoadBegin(n)
	case automaton.KindGroupEnd:
		ok = s.execGroupEnd(n)
	case automaton.KindNoop:
		ok = s.exec(n.Next())
	}
	s.depth--
	return ok
}

// execMatch consumes one label of the node's type at or after the cursor.
//
// A seeking match scans every candidate in order. A plain match looks at
// the first candidate only: if it fails the constraints the match fails,
// and if it passes but the continuation fails the remaining candidates are
// scanned.
func (s *Search) execMatch(n *automaton.Node) bool {
	t, seek, group, constraints := n.Match()
	if s.end > s.limit {
		return false
	}
	idx := s.doc.Index(t).Within(label.Span{Begin: s.end, End: s.limit})

	skip := false
	if !seek {
		first, ok := idx.First()
		if !ok || !s.satisfies(first, constraints) {
			return false
		}
		if s.consume(n, first, group) {
			return true
		}
		skip = true
	}
	for l := range idx.All() {
		if skip {
			// the first candidate was already tried above
			skip = false
			continue
		}
		if s.err != nil {
			return false
		}
		if s.satisfies(l, constraints) && s.consume(n, l, group) {
			return true
		}
	}
	return false
}

// consume moves the cursor onto l, records it in group and runs the
// continuation.
func (s *Search) consume(n *automaton.Node, l label.Label, group int) bool {
	begin, end := s.begin, s.end
	s.begin, s.end = l.Begin, l.End
	s.trail = append(s.trail, l.Begin)

	var (
		gb, ge int
		gl     label.Label
	)
	if group >= 0 {
		gb, ge, gl = s.groups[2*group], s.groups[2*group+1], s.labels[group]
		s.groups[2*group], s.groups[2*group+1] = l.Begin, l.End
		s.labels[group] = l
	}

	if s.exec(n.Next()) {
		return true
	}

	if group >= 0 {
		s.groups[2*group], s.groups[2*group+1], s.labels[group] = gb, ge, gl
	}
	s.trail = s.trail[:len(s.trail)-1]
	s.begin, s.end = begin, end
	return false
}

// satisfies checks l against every constraint. A kind mismatch at run time
// records a *label.TypeMismatchError and fails.
func (s *Search) satisfies(l label.Label, constraints []automaton.Constraint) bool {
	for i := range constraints {
		c := &constraints[i]
		v := c.Property.Get(l)
		if v.Kind() != c.Property.Kind {
			s.err = &label.TypeMismatchError{
				Type: l.Type.Name(), Property: c.Property.Name, Want: c.Property.Kind, Got: v.Kind(),
			}
			return false
		}
		switch c.Operand {
		case automaton.OperandLiteral:
			if !v.Equal(c.Literal) {
				return false
			}
		case automaton.OperandGroupSpan:
			gs := s.Group(c.Group)
			// an unset group never matches
			if !gs.Valid() || v.SpanVal() != gs {
				return false
			}
		case automaton.OperandGroupProperty:
			ref := s.labels[c.Group]
			if ref.IsZero() {
				return false
			}
			rv := c.RefProperty.Get(ref)
			if rv.Kind() != c.RefProperty.Kind {
				s.err = &label.TypeMismatchError{
					Type: ref.Type.Name(), Property: c.RefProperty.Name, Want: c.RefProperty.Kind, Got: rv.Kind(),
				}
				return false
			}
			if !v.Equal(rv) {
				return false
			}
		}
	}
	return true
}

func (s *Search) execBranch(n *automaton.Node) bool {
	for _, alt := range n.Alternatives() {
		if s.exec(alt) {
			return true
		}
		if s.err != nil {
			return false
		}
	}
	return false
}

func (s *Search) execOptional(n *automaton.Node) bool {
	switch n.Policy() {
	case automaton.Lazy:
		return s.exec(n.Next()) || s.exec(n.Sub())
	case automaton.Possessive:
		// the body runs to Accept by itself; once it matches it is kept
		sn := s.snapshot()
		if s.exec(n.Sub()) {
			if s.exec(n.Next()) {
				return true
			}
			s.restore(&sn)
			return false
		}
		return s.exec(n.Next())
	default:
		return s.exec(n.Sub()) || s.exec(n.Next())
	}
}

func (s *Search) execLoopEnter(n *automaton.Node) bool {
	loop := s.aut.Node(n.Sub())
	count, begin := loop.LoopLocals()
	savedCount, savedBegin := s.locals[count], s.locals[begin]

	if loop.Policy() == automaton.Possessive {
		sn := s.snapshot()
		s.locals[count], s.locals[begin] = 0, -1
		if !s.exec(loop.ID()) {
			s.locals[count], s.locals[begin] = savedCount, savedBegin
			return false
		}
		s.locals[count], s.locals[begin] = savedCount, savedBegin
		if s.exec(n.Next()) {
			return true
		}
		s.restore(&sn)
		return false
	}

	s.locals[count], s.locals[begin] = 0, -1
	if s.exec(loop.ID()) {
		return true
	}
	s.locals[count], s.locals[begin] = savedCount, savedBegin
	return false
}

// execLoop decides between another iteration and the continuation.
// An iteration that consumed nothing ends the loop.
func (s *Search) execLoop(n *automaton.Node) bool {
	countLocal, beginLocal := n.LoopLocals()
	count := s.locals[countLocal]
	if count > 0 && s.end == s.locals[beginLocal] {
		return s.exec(n.Next())
	}

	min, max := n.Bounds()
	if count < min {
		return s.iterate(n, count)
	}
	if n.Policy() == automaton.Lazy {
		if s.exec(n.Next()) {
			return true
		}
		return count < max && s.iterate(n, count)
	}
	if count < max && s.iterate(n, count) {
		return true
	}
	return s.exec(n.Next())
}

// iterate runs iteration count+1 of the loop body.
func (s *Search) iterate(n *automaton.Node, count int) bool {
	countLocal, beginLocal := n.LoopLocals()
	savedBegin := s.locals[beginLocal]
	s.locals[countLocal] = count + 1
	s.locals[beginLocal] = s.end
	if s.exec(n.Sub()) {
		return true
	}
	s.locals[countLocal] = count
	s.locals[beginLocal] = savedBegin
	return false
}

// execLookahead tests the sub-chain without consuming. Captures made by a
// positive lookahead are kept.
func (s *Search) execLookahead(n *automaton.Node) bool {
	sn := s.snapshot()
	matched := s.exec(n.Sub())
	if s.err != nil {
		return false
	}
	if n.Negative() {
		if matched {
			s.restore(&sn)
			return false
		}
		return s.exec(n.Next())
	}
	if !matched {
		return false
	}
	s.begin, s.end, s.limit = sn.begin, sn.end, sn.limit
	s.trail = s.trail[:sn.trail]
	if s.exec(n.Next()) {
		return true
	}
	s.restore(&sn)
	return false
}

// execAtomic commits to the first way the sub-chain matches.
func (s *Search) execAtomic(n *automaton.Node) bool {
	sn := s.snapshot()
	if !s.exec(n.Sub()) {
		return false
	}
	if s.exec(n.Next()) {
		return true
	}
	s.restore(&sn)
	return false
}

// execPin runs each condition restricted to the span the preceding match
// just consumed, then continues from after that span.
func (s *Search) execPin(n *automaton.Node) bool {
	sn := s.snapshot()
	at := n.Local()
	s.locals[at] = s.begin

	for _, cond := range n.Alternatives() {
		s.limit = sn.end
		s.begin, s.end = s.locals[at], s.locals[at]
		if !s.exec(cond) {
			s.restore(&sn)
			return false
		}
		s.trail = s.trail[:sn.trail]
	}

	s.begin, s.end, s.limit = sn.begin, sn.end, sn.limit
	if s.exec(n.Next()) {
		return true
	}
	s.restore(&sn)
	return false
}

func (s *Search) execSaveBegin(n *automaton.Node) bool {
	l := n.Local()
	saved := s.locals[l]
	s.locals[l] = len(s.trail)
	if s.exec(n.Next()) {
		return true
	}
	s.locals[l] = saved
	return false
}

// execLoadBegin sets the cursor begin to the first label consumed since the
// matching SaveBegin, or to the cursor end if nothing was consumed.
func (s *Search) execLoadBegin(n *automaton.Node) bool {
	mark := s.locals[n.Local()]
	saved := s.begin
	if mark < len(s.trail) {
		s.begin = s.trail[mark]
	} else {
		s.begin = s.end
	}
	if s.exec(n.Next()) {
		return true
	}
	s.begin = saved
	return false
}

func (s *Search) execGroupEnd(n *automaton.Node) bool {
	g := n.Group()
	gb, ge := s.groups[2*g], s.groups[2*g+1]
	s.groups[2*g], s.groups[2*g+1] = s.begin, s.end
	if s.exec(n.Next()) {
		return true
	}
	s.groups[2*g], s.groups[2*g+1] = gb, ge
	return false
}
