// Package label provides the data model the pattern engine matches against:
// spans, typed property values, label types with their property tables,
// ordered label indexes and documents.
//
// A Document maps each label Type to an Index of labels of that type. An Index
// is ordered by begin offset (ties broken by end offset) and can be restricted
// to a sub-span, which narrows it to labels lying wholly inside that span.
package label

import "fmt"

// Span is a half-open integer interval [Begin, End).
type Span struct {
	Begin int
	End   int
}

// NoSpan marks a capture group that has not been written.
var NoSpan = Span{Begin: -1, End: -1}

// NewSpan returns [begin, end). It panics if begin > end.
func NewSpan(begin, end int) Span {
	if begin > end {
		panic(fmt.Sprintf("label: invalid span [%d, %d)", begin, end))
	}
	return Span{Begin: begin, End: end}
}

// Len returns the number of offsets covered by the span.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Valid reports whether the span is a real interval (not NoSpan).
func (s Span) Valid() bool {
	return s.Begin >= 0 && s.Begin <= s.End
}

// Contains reports whether o lies wholly inside s.
func (s Span) Contains(o Span) bool {
	return s.Begin <= o.Begin && o.End <= s.End
}

// Overlaps reports whether s and o share at least one offset.
func (s Span) Overlaps(o Span) bool {
	return s.Begin < o.End && o.Begin < s.End
}

// Less orders spans by begin, then end.
func (s Span) Less(o Span) bool {
	if s.Begin != o.Begin {
		return s.Begin < o.Begin
	}
	return s.End < o.End
}

// Text returns the slice of text covered by the span, clamped to the text.
func (s Span) Text(text string) string {
	b, e := s.Begin, s.End
	if b < 0 {
		b = 0
	}
	if e > len(text) {
		e = len(text)
	}
	if b >= e {
		return ""
	}
	return text[b:e]
}

// String returns the span formatted as "[b, e)".
func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Begin, s.End)
}
