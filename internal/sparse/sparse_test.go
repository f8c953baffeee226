package sparse

import (
	"slices"
	"testing"
)

func TestSet_Basic(t *testing.T) {
	s := New(100)
	if s.Len() != 0 {
		t.Error("new set should be empty")
	}
	if s.Contains(0) {
		t.Error("empty set should not contain 0")
	}

	if !s.Insert(5) {
		t.Error("first insert should return true")
	}
	if !s.Contains(5) {
		t.Error("set should contain 5 after insert")
	}
	if s.Insert(5) {
		t.Error("duplicate insert should return false")
	}

	s.Insert(10)
	s.Insert(3)
	if s.Len() != 3 {
		t.Errorf("len should be 3, got %d", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Error("set should be empty after clear")
	}
	if s.Contains(5) {
		t.Error("cleared set should not contain 5")
	}
}

func TestSet_InsertionOrder(t *testing.T) {
	s := New(10)
	for _, v := range []uint32{5, 2, 8, 1, 2} {
		s.Insert(v)
	}
	if got, want := s.Values(), []uint32{5, 2, 8, 1}; !slices.Equal(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
}

func TestSet_OutOfRange(t *testing.T) {
	s := New(4)
	if s.Contains(4) || s.Contains(1 << 31) {
		t.Error("values beyond capacity are never members")
	}
	defer func() {
		if recover() == nil {
			t.Error("Insert beyond capacity should panic")
		}
	}()
	s.Insert(4)
}

func TestSet_StaleSparseEntry(t *testing.T) {
	s := New(8)
	s.Insert(3)
	s.Clear()
	s.Insert(6)
	// sparse[3] still points at index 0, which now holds 6
	if s.Contains(3) {
		t.Error("cleared value must not reappear")
	}
}
