// Package automaton provides the compiled form of a label pattern: an
// immutable arena of match and control nodes addressed by NodeID.
//
// Every node carries a Next handle, its continuation. Loops point back at
// themselves through their body, so the graph is cyclic; handles are plain
// indexes into the arena and own nothing. An Automaton is never modified
// after Build and can be shared by any number of concurrent searches.
package automaton

import (
	"fmt"
	"strings"

	"github.com/coregx/corelabel/internal/conv"
	"github.com/coregx/corelabel/internal/sparse"
	"github.com/coregx/corelabel/label"
)

// NodeID identifies a node in an automaton's arena.
type NodeID uint32

// InvalidNode represents an unset node handle
const InvalidNode NodeID = 0xFFFFFFFF

// Kind identifies the type of a node and determines which fields are valid.
type Kind uint8

const (
	// KindAccept ends a chain successfully
	KindAccept Kind = iota

	// KindMatch matches one label of a type, with property constraints
	KindMatch

	// KindBranch tries ordered alternatives
	KindBranch

	// KindOptional takes or skips its body according to its policy
	KindOptional

	// KindLoopEnter initializes a loop's counter and enters it
	KindLoopEnter

	// KindLoop decides between another iteration and exiting
	KindLoop

	// KindLookahead tests its body without consuming anything
	KindLookahead

	// KindAtomic runs its body to completion and freezes the result
	KindAtomic

	// KindPin tests conditions anchored at the preceding match
	KindPin

	// KindSaveBegin records where a chain's consumption starts
	KindSaveBegin

	// KindLoadBegin restores a chain's effective begin into the cursor
	KindLoadBegin

	// KindGroupEnd commits the cursor span into a capture group
	KindGroupEnd

	// KindNoop continues with Next; used as a join point
	KindNoop
)

// String returns a human-readable representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindAccept:
		return "Accept"
	case KindMatch:
		return "Match"
	case KindBranch:
		return "Branch"
	case KindOptional:
		return "Optional"
	case KindLoopEnter:
		return "LoopEnter"
	case KindLoop:
		return "Loop"
	case KindLookahead:
		return "Lookahead"
	case KindAtomic:
		return "Atomic"
	case KindPin:
		return "Pin"
	case KindSaveBegin:
		return "SaveBegin"
	case KindLoadBegin:
		return "LoadBegin"
	case KindGroupEnd:
		return "GroupEnd"
	case KindNoop:
		return "Noop"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Policy selects how an optional or a loop prefers its choices.
type Policy uint8

const (
	// Greedy prefers taking the body, then backtracks to skipping it
	Greedy Policy = iota

	// Lazy prefers skipping the body, then backtracks to taking it
	Lazy

	// Possessive takes the body whenever it matches and never revisits
	// that choice
	Possessive
)

// String returns the quantifier suffix of the policy
func (p Policy) String() string {
	switch p {
	case Greedy:
		return "greedy"
	case Lazy:
		return "lazy"
	case Possessive:
		return "possessive"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// Node is one node of the arena. The node's kind determines which fields
// are valid.
type Node struct {
	id   NodeID
	kind Kind
	next NodeID

	// For Match
	labelType   *label.Type
	seek        bool
	group       int
	constraints []Constraint

	// For Optional, Lookahead, Atomic: the sub-chain.
	// For Loop: the body. For LoopEnter: the Loop node.
	sub NodeID

	// For Branch: alternatives. For Pin: conditions.
	alts []NodeID

	// For Optional and Loop
	policy Policy

	// For Lookahead
	negative bool

	// For Loop
	min, max   int
	countLocal int
	beginLocal int

	// For SaveBegin, LoadBegin, Pin, LoopEnter
	local int
}

// ID returns the node's handle
func (n *Node) ID() NodeID {
	return n.id
}

// Kind returns the node's type
func (n *Node) Kind() Kind {
	return n.kind
}

// Next returns the node's continuation
func (n *Node) Next() NodeID {
	return n.next
}

// Match returns the fields of a Match node.
// group is -1 when the match does not capture.
func (n *Node) Match() (t *label.Type, seek bool, group int, constraints []Constraint) {
	return n.labelType, n.seek, n.group, n.constraints
}

// Sub returns the sub-chain of Optional, Lookahead and Atomic nodes, the body
// of a Loop and the Loop node of a LoopEnter.
func (n *Node) Sub() NodeID {
	return n.sub
}

// Alternatives returns the alternatives of a Branch or the conditions of a Pin.
func (n *Node) Alternatives() []NodeID {
	return n.alts
}

// Policy returns the policy of an Optional or Loop.
func (n *Node) Policy() Policy {
	return n.policy
}

// Negative reports whether a Lookahead is negative.
func (n *Node) Negative() bool {
	return n.negative
}

// Bounds returns the repetition bounds of a Loop.
func (n *Node) Bounds() (min, max int) {
	return n.min, n.max
}

// LoopLocals returns the local slots of a Loop: the iteration counter and
// the cursor position where the current iteration started.
func (n *Node) LoopLocals() (count, begin int) {
	return n.countLocal, n.beginLocal
}

// Local returns the local slot of SaveBegin, LoadBegin and Pin nodes.
func (n *Node) Local() int {
	return n.local
}

// Group returns the capture group of Match and GroupEnd nodes, or -1.
func (n *Node) Group() int {
	return n.group
}

// String returns a human-readable representation of the node
func (n *Node) String() string {
	switch n.kind {
	case KindAccept:
		return fmt.Sprintf("%d: Accept", n.id)
	case KindMatch:
		var b strings.Builder
		fmt.Fprintf(&b, "%d: Match %s", n.id, n.labelType)
		if n.seek {
			b.WriteString(" seek")
		}
		if n.group >= 0 {
			fmt.Fprintf(&b, " group=%d", n.group)
		}
		for _, c := range n.constraints {
			fmt.Fprintf(&b, " {%s}", c)
		}
		fmt.Fprintf(&b, " -> %d", n.next)
		return b.String()
	case KindBranch:
		return fmt.Sprintf("%d: Branch %v", n.id, n.alts)
	case KindOptional:
		return fmt.Sprintf("%d: Optional %s body=%d -> %d", n.id, n.policy, n.sub, n.next)
	case KindLoopEnter:
		return fmt.Sprintf("%d: LoopEnter loop=%d -> %d", n.id, n.sub, n.next)
	case KindLoop:
		return fmt.Sprintf("%d: Loop %s {%d,%d} body=%d -> %d", n.id, n.policy, n.min, n.max, n.sub, n.next)
	case KindLookahead:
		if n.negative {
			return fmt.Sprintf("%d: Lookahead ! %d -> %d", n.id, n.sub, n.next)
		}
		return fmt.Sprintf("%d: Lookahead = %d -> %d", n.id, n.sub, n.next)
	case KindAtomic:
		return fmt.Sprintf("%d: Atomic %d -> %d", n.id, n.sub, n.next)
	case KindPin:
		return fmt.Sprintf("%d: Pin %v -> %d", n.id, n.alts, n.next)
	case KindSaveBegin:
		return fmt.Sprintf("%d: SaveBegin local=%d -> %d", n.id, n.local, n.next)
	case KindLoadBegin:
		return fmt.Sprintf("%d: LoadBegin local=%d -> %d", n.id, n.local, n.next)
	case KindGroupEnd:
		return fmt.Sprintf("%d: GroupEnd %d -> %d", n.id, n.group, n.next)
	case KindNoop:
		return fmt.Sprintf("%d: Noop -> %d", n.id, n.next)
	default:
		return fmt.Sprintf("%d: Unknown", n.id)
	}
}

// Automaton is a compiled label pattern.
type Automaton struct {
	nodes      []Node
	root       NodeID
	pattern    string
	numGroups  int
	numLocals  int
	groupNames map[string]int
	groupTypes []*label.Type
}

// Root returns the node where every search attempt starts
func (a *Automaton) Root() NodeID {
	return a.root
}

// Node returns the node with the given handle.
// Returns nil if the handle is invalid.
func (a *Automaton) Node(id NodeID) *Node {
	if id == InvalidNode || int(id) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[id]
}

// Len returns the number of nodes in the arena
func (a *Automaton) Len() int {
	return len(a.nodes)
}

// Pattern returns the source text the automaton was compiled from
func (a *Automaton) Pattern() string {
	return a.pattern
}

// NumGroups returns the number of capture groups
func (a *Automaton) NumGroups() int {
	return a.numGroups
}

// NumLocals returns the number of integer scratch slots a search needs
func (a *Automaton) NumLocals() int {
	return a.numLocals
}

// GroupIndex returns the group registered under name.
func (a *Automaton) GroupIndex(name string) (int, bool) {
	g, ok := a.groupNames[name]
	return g, ok
}

// GroupType returns the label type recorded for a typed group, or nil.
func (a *Automaton) GroupType(g int) *label.Type {
	if g < 0 || g >= len(a.groupTypes) {
		return nil
	}
	return a.groupTypes[g]
}

// GroupNames returns one name per group, indexed by group. Unnamed groups
// have an empty name.
func (a *Automaton) GroupNames() []string {
	names := make([]string, a.numGroups)
	for name, g := range a.groupNames {
		names[g] = name
	}
	return names
}

// Reachable returns the nodes reachable from the root in depth-first
// discovery order, following continuations, sub-chains, alternatives and
// pin conditions. Accept is always included.
func (a *Automaton) Reachable() []NodeID {
	seen := sparse.New(conv.IntToUint32(len(a.nodes)))
	stack := []NodeID{a.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Insert(uint32(id)) {
			continue
		}
		n := &a.nodes[id]
		if n.kind == KindAccept {
			continue
		}
		// Sub-chains and alternatives are visited before the continuation.
		stack = append(stack, n.next)
		for i := len(n.alts) - 1; i >= 0; i-- {
			stack = append(stack, n.alts[i])
		}
		switch n.kind {
		case KindOptional, KindLookahead, KindAtomic, KindLoop, KindLoopEnter:
			stack = append(stack, n.sub)
		}
	}
	seen.Insert(0) // Accept
	out := make([]NodeID, seen.Len())
	for i, v := range seen.Values() {
		out[i] = NodeID(v)
	}
	return out
}

// String dumps the arena, one node per line
func (a *Automaton) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automaton(%q root=%d groups=%d locals=%d)\n", a.pattern, a.root, a.numGroups, a.numLocals)
	for i := range a.nodes {
		b.WriteString("  ")
		b.WriteString(a.nodes[i].String())
		b.WriteByte('\n')
	}
	return b.String()
}
