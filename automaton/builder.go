package automaton

import (
	"fmt"

	"github.com/coregx/corelabel/internal/conv"
	"github.com/coregx/corelabel/label"
)

// Builder constructs automata incrementally. It is used by the pattern
// compiler; nodes are appended to the arena and their continuations are
// patched once the following fragment is known.
type Builder struct {
	nodes      []Node
	accept     NodeID
	numLocals  int
	numGroups  int
	groupNames map[string]int
	groupTypes []*label.Type
}

// NewBuilder creates a builder whose arena starts with the shared Accept node
func NewBuilder() *Builder {
	b := &Builder{
		nodes:      make([]Node, 0, 16),
		groupNames: make(map[string]int),
	}
	b.accept = b.add(Node{kind: KindAccept})
	return b
}

// add appends n. A zero next is the Accept node, so a node that is never
// patched continues to Accept.
func (b *Builder) add(n Node) NodeID {
	id := NodeID(conv.IntToUint32(len(b.nodes)))
	n.id = id
	if n.kind != KindMatch && n.kind != KindGroupEnd {
		n.group = -1
	}
	b.nodes = append(b.nodes, n)
	return id
}

// Accept returns the shared Accept node that terminates sub-chains
func (b *Builder) Accept() NodeID {
	return b.accept
}

// Len returns the number of nodes added so far
func (b *Builder) Len() int {
	return len(b.nodes)
}

// AllocLocal reserves a scratch slot and returns its index
func (b *Builder) AllocLocal() int {
	l := b.numLocals
	b.numLocals++
	return l
}

// AllocGroup reserves a capture group. name may be empty for an unnamed
// group; t is the recorded label type of a typed group, or nil.
// It fails if name is already taken.
func (b *Builder) AllocGroup(name string, t *label.Type) (int, error) {
	if name != "" {
		if _, dup := b.groupNames[name]; dup {
			return -1, fmt.Errorf("duplicate capturing group name %q", name)
		}
	}
	g := b.numGroups
	b.numGroups++
	b.groupTypes = append(b.groupTypes, t)
	if name != "" {
		b.groupNames[name] = g
	}
	return g, nil
}

// LookupGroup returns a group already allocated under name
func (b *Builder) LookupGroup(name string) (g int, t *label.Type, ok bool) {
	g, ok = b.groupNames[name]
	if !ok {
		return -1, nil, false
	}
	return g, b.groupTypes[g], true
}

// AddMatch adds a node matching one label of type t.
// group is -1 for a non-capturing match.
func (b *Builder) AddMatch(t *label.Type, seek bool, group int, constraints []Constraint) NodeID {
	cs := make([]Constraint, len(constraints))
	copy(cs, constraints)
	return b.add(Node{kind: KindMatch, labelType: t, seek: seek, group: group, constraints: cs})
}

// AddBranch adds a node trying alts in order
func (b *Builder) AddBranch(alts []NodeID) NodeID {
	paths := make([]NodeID, len(alts))
	copy(paths, alts)
	return b.add(Node{kind: KindBranch, alts: paths})
}

// AddOptional adds an optional over body
func (b *Builder) AddOptional(policy Policy, body NodeID) NodeID {
	return b.add(Node{kind: KindOptional, policy: policy, sub: body})
}

// AddLoop adds a loop decision node. The body's tail must be patched to
// point back at the returned node.
func (b *Builder) AddLoop(policy Policy, body NodeID, min, max int) NodeID {
	return b.add(Node{
		kind:       KindLoop,
		policy:     policy,
		sub:        body,
		min:        min,
		max:        max,
		countLocal: b.AllocLocal(),
		beginLocal: b.AllocLocal(),
	})
}

// AddLoopEnter adds the entry node of loop
func (b *Builder) AddLoopEnter(loop NodeID) NodeID {
	return b.add(Node{kind: KindLoopEnter, sub: loop})
}

// AddLookahead adds a positive or negative lookahead over sub
func (b *Builder) AddLookahead(negative bool, sub NodeID) NodeID {
	return b.add(Node{kind: KindLookahead, negative: negative, sub: sub})
}

// AddAtomic adds an atomic group over sub
func (b *Builder) AddAtomic(sub NodeID) NodeID {
	return b.add(Node{kind: KindAtomic, sub: sub})
}

// AddPin adds a node testing conds at the position of the preceding match
func (b *Builder) AddPin(conds []NodeID) NodeID {
	cs := make([]NodeID, len(conds))
	copy(cs, conds)
	return b.add(Node{kind: KindPin, alts: cs, local: b.AllocLocal()})
}

// AddSaveBegin adds a node recording where a chain starts consuming
func (b *Builder) AddSaveBegin(local int) NodeID {
	return b.add(Node{kind: KindSaveBegin, local: local})
}

// AddLoadBegin adds a node restoring the effective begin saved in local
func (b *Builder) AddLoadBegin(local int) NodeID {
	return b.add(Node{kind: KindLoadBegin, local: local})
}

// AddGroupEnd adds a node committing the cursor span to group
func (b *Builder) AddGroupEnd(group int) NodeID {
	return b.add(Node{kind: KindGroupEnd, group: group})
}

// AddNoop adds a join node
func (b *Builder) AddNoop() NodeID {
	return b.add(Node{kind: KindNoop})
}

// Patch sets the continuation of id to target
func (b *Builder) Patch(id, target NodeID) error {
	if int(id) >= len(b.nodes) {
		return &BuildError{Message: "node ID out of bounds", NodeID: id}
	}
	if int(target) >= len(b.nodes) {
		return &BuildError{Message: fmt.Sprintf("patch target %d out of bounds", target), NodeID: id}
	}
	n := &b.nodes[id]
	if n.kind == KindAccept || n.kind == KindBranch {
		return &BuildError{Message: "cannot patch " + n.kind.String() + " node", NodeID: id}
	}
	n.next = target
	return nil
}

// Build freezes the arena into an Automaton starting at root.
func (b *Builder) Build(root NodeID, pattern string) (*Automaton, error) {
	if int(root) >= len(b.nodes) {
		return nil, &BuildError{Message: "root out of bounds", NodeID: root}
	}
	for i := range b.nodes {
		if err := b.validate(&b.nodes[i]); err != nil {
			return nil, err
		}
	}
	names := make(map[string]int, len(b.groupNames))
	for k, v := range b.groupNames {
		names[k] = v
	}
	types := make([]*label.Type, len(b.groupTypes))
	copy(types, b.groupTypes)
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Automaton{
		nodes:      nodes,
		root:       root,
		pattern:    pattern,
		numGroups:  b.numGroups,
		numLocals:  b.numLocals,
		groupNames: names,
		groupTypes: types,
	}, nil
}

func (b *Builder) validate(n *Node) error {
	inRange := func(id NodeID) bool { return int(id) < len(b.nodes) }
	if n.kind != KindAccept && !inRange(n.next) {
		return &BuildError{Message: "dangling continuation", NodeID: n.id}
	}
	switch n.kind {
	case KindOptional, KindLookahead, KindAtomic, KindLoop, KindLoopEnter:
		if !inRange(n.sub) {
			return &BuildError{Message: "dangling sub-chain", NodeID: n.id}
		}
	case KindBranch, KindPin:
		for _, alt := range n.alts {
			if !inRange(alt) {
				return &BuildError{Message: "dangling alternative", NodeID: n.id}
			}
		}
	case KindMatch:
		if n.labelType == nil {
			return &BuildError{Message: "match without label type", NodeID: n.id}
		}
	}
	if n.kind == KindLoop && (n.min < 0 || n.max < n.min) {
		return &BuildError{Message: fmt.Sprintf("illegal loop bounds {%d,%d}", n.min, n.max), NodeID: n.id}
	}
	if n.kind == KindLoopEnter && b.nodes[n.sub].kind != KindLoop {
		return &BuildError{Message: "loop entry does not point at a loop", NodeID: n.id}
	}
	return nil
}
