package syntax

import (
	"fmt"

	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

// DefaultLoopLimit caps the repetitions of unbounded quantifiers
const DefaultLoopLimit = 10_000

// CompilerConfig configures pattern compilation
type CompilerConfig struct {
	// LoopLimit is the maximum repetition count of *, + and {min,}.
	// It bounds worst-case backtracking.
	// Default: 10,000
	LoopLimit int

	// MaxNestingDepth limits how deeply groups and pinnings may nest
	// Default: 100
	MaxNestingDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		LoopLimit:       DefaultLoopLimit,
		MaxNestingDepth: 100,
	}
}

// Compile compiles pattern into an automaton, resolving type names with r.
// On failure it returns a *Error and no automaton.
func Compile(r label.Resolver, pattern string, config CompilerConfig) (*automaton.Automaton, error) {
	if r == nil {
		return nil, &Error{Pattern: pattern, Message: "no type resolver"}
	}
	if config.LoopLimit <= 0 {
		config.LoopLimit = DefaultLoopLimit
	}
	if config.MaxNestingDepth <= 0 {
		config.MaxNestingDepth = 100
	}

	p := newParser(r, pattern, config)
	f, err := p.parseAlts()
	if err != nil {
		return nil, err
	}
	switch ch := p.peekTok(); ch {
	case eof:
	case ')':
		return nil, p.errorf("unmatched ')'")
	case ']':
		return nil, p.errorf("unmatched ']'")
	default:
		return nil, p.errorf("unexpected %q", ch)
	}

	root := p.b.Accept()
	if !f.empty() {
		root = f.head
	}
	a, err := p.b.Build(root, pattern)
	if err != nil {
		return nil, &Error{Pattern: pattern, Offset: p.pos, Message: "internal compiler error", Err: err}
	}
	return a, nil
}

// frag is a compiled fragment: head is where it starts and tail is the
// node whose continuation is still open.
type frag struct {
	head, tail automaton.NodeID
}

var emptyFrag = frag{head: automaton.InvalidNode, tail: automaton.InvalidNode}

func (f frag) empty() bool {
	return f.head == automaton.InvalidNode
}

// link patches from's tail to continue at to's head.
func (p *parser) link(from frag, to automaton.NodeID) {
	if err := p.b.Patch(from.tail, to); err != nil {
		// Fragments are built so that tails are always patchable.
		panic(fmt.Sprintf("syntax: %v", err))
	}
}

// headOr returns the fragment head, or alt for an empty fragment.
func (f frag) headOr(alt automaton.NodeID) automaton.NodeID {
	if f.empty() {
		return alt
	}
	return f.head
}

// sequence chains elements. Chains of two or more are wrapped in a
// SaveBegin/LoadBegin pair so the cursor carries the chain's effective
// begin after it.
func (p *parser) sequence(elems []frag) frag {
	switch len(elems) {
	case 0:
		return emptyFrag
	case 1:
		return elems[0]
	}
	for i := 0; i < len(elems)-1; i++ {
		p.link(elems[i], elems[i+1].head)
	}
	return p.wrapBegin(frag{head: elems[0].head, tail: elems[len(elems)-1].tail})
}

// wrapBegin surrounds f with SaveBegin/LoadBegin sharing one local.
func (p *parser) wrapBegin(f frag) frag {
	local := p.b.AllocLocal()
	save := p.b.AddSaveBegin(local)
	load := p.b.AddLoadBegin(local)
	if f.empty() {
		p.link(frag{tail: save}, load)
	} else {
		p.link(frag{tail: save}, f.head)
		p.link(f, load)
	}
	return frag{head: save, tail: load}
}

// alternation joins alternatives into an ordered Branch.
func (p *parser) alternation(alts []frag) frag {
	join := p.b.AddNoop()
	heads := make([]automaton.NodeID, 0, len(alts))
	for _, f := range alts {
		if f.empty() {
			heads = append(heads, join)
			continue
		}
		p.link(f, join)
		heads = append(heads, f.head)
	}
	return frag{head: p.b.AddBranch(heads), tail: join}
}

// capture wraps f as capture group g.
func (p *parser) capture(f frag, g int) frag {
	f = p.wrapBegin(f)
	end := p.b.AddGroupEnd(g)
	p.link(f, end)
	return frag{head: f.head, tail: end}
}

// subchain terminates f at Accept and returns its head, for nodes that run
// a sub-chain as a self-contained test.
func (p *parser) subchain(f frag) automaton.NodeID {
	if f.empty() {
		return p.b.Accept()
	}
	p.link(f, p.b.Accept())
	return f.head
}

// optional wraps f as an optional with the given policy.
func (p *parser) optional(f frag, policy automaton.Policy) frag {
	if policy == automaton.Possessive {
		opt := p.b.AddOptional(policy, p.subchain(f))
		return frag{head: opt, tail: opt}
	}
	join := p.b.AddNoop()
	p.link(f, join)
	opt := p.b.AddOptional(policy, f.head)
	p.link(frag{tail: opt}, join)
	return frag{head: opt, tail: join}
}

// loop wraps f as a loop over [min, max] with the given policy.
// A possessive loop runs to completion on its own and continues from its
// entry node; other loops continue from the loop node.
func (p *parser) loop(f frag, policy automaton.Policy, min, max int) frag {
	loop := p.b.AddLoop(policy, f.head, min, max)
	p.link(f, loop)
	enter := p.b.AddLoopEnter(loop)
	if policy == automaton.Possessive {
		return frag{head: enter, tail: enter}
	}
	return frag{head: enter, tail: loop}
}
