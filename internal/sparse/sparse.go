// Package sparse provides a sparse set of automaton node handles.
//
// A sparse set supports O(1) insertion, membership testing and clearing
// while keeping a dense list of its members in insertion order. The
// automaton uses it to walk the nodes reachable from the root.
package sparse

// Set is a set of uint32 values below a fixed capacity.
type Set struct {
	sparse []uint32 // value -> index in dense
	dense  []uint32
}

// New creates a set holding values in [0, capacity).
func New(capacity uint32) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds value and reports whether it was absent.
// Panics if value >= capacity.
func (s *Set) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	//nolint:gosec // G115: len(dense) < capacity, which fits in uint32
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set
func (s *Set) Contains(value uint32) bool {
	if uint64(value) >= uint64(len(s.sparse)) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Clear removes all values in O(1)
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of values in the set
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the members in insertion order.
// The slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
