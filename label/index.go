package label

import (
	"iter"
	"slices"
	"sort"
)

// Index is an ordered, range-queryable collection of labels of one type.
// Labels are ordered by begin offset, then end offset.
type Index interface {
	// Within restricts the index to labels lying wholly inside s.
	Within(s Span) Index

	// First returns the first label of the index, if any.
	First() (Label, bool)

	// All yields every label in ascending order.
	All() iter.Seq[Label]

	// Len returns the number of labels in the index.
	Len() int
}

// SortedIndex is an Index over a sorted slice. Restricting a SortedIndex
// never copies labels.
type SortedIndex struct {
	labels []Label
	bound  Span
	// bounded is false for the unrestricted index
	bounded bool
}

// NewSortedIndex sorts labels and returns an index over them.
// The slice is owned by the index afterwards.
func NewSortedIndex(labels []Label) *SortedIndex {
	slices.SortStableFunc(labels, compareLabels)
	return &SortedIndex{labels: labels}
}

// EmptyIndex is an index with no labels.
var EmptyIndex Index = &SortedIndex{}

func compareLabels(a, b Label) int {
	switch {
	case a.Begin != b.Begin:
		return a.Begin - b.Begin
	default:
		return a.End - b.End
	}
}

// Within implements Index.
func (x *SortedIndex) Within(s Span) Index {
	if x.bounded {
		// Intersect with the existing bound.
		if s.Begin < x.bound.Begin {
			s.Begin = x.bound.Begin
		}
		if s.End > x.bound.End {
			s.End = x.bound.End
		}
	}
	if s.End < s.Begin {
		s.End = s.Begin
	}
	lo := sort.Search(len(x.labels), func(i int) bool { return x.labels[i].Begin >= s.Begin })
	// Labels beginning after s.End cannot fit; those beginning inside may
	// still end past it and are filtered during iteration.
	hi := lo + sort.Search(len(x.labels)-lo, func(i int) bool { return x.labels[lo+i].Begin > s.End })
	return &SortedIndex{labels: x.labels[lo:hi], bound: s, bounded: true}
}

func (x *SortedIndex) fits(l Label) bool {
	return !x.bounded || l.End <= x.bound.End
}

// First implements Index.
func (x *SortedIndex) First() (Label, bool) {
	for _, l := range x.labels {
		if x.fits(l) {
			return l, true
		}
	}
	return Label{}, false
}

// All implements Index.
func (x *SortedIndex) All() iter.Seq[Label] {
	return func(yield func(Label) bool) {
		for _, l := range x.labels {
			if !x.fits(l) {
				continue
			}
			if !yield(l) {
				return
			}
		}
	}
}

// Len implements Index.
func (x *SortedIndex) Len() int {
	if !x.bounded {
		return len(x.labels)
	}
	n := 0
	for _, l := range x.labels {
		if x.fits(l) {
			n++
		}
	}
	return n
}
