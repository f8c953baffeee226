package label

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Document exposes the label indexes of one document.
type Document interface {
	// Index returns the index of labels of type t. It never returns nil;
	// a type with no labels yields an empty index.
	Index(t *Type) Index

	// Span returns the span of the whole document.
	Span() Span
}

// MemDocument is an in-memory Document over a text.
// Labels may be added at any time; indexes are rebuilt lazily on the next
// read after a write. Concurrent reads are safe; writes must not run
// concurrently with searches over the same document.
type MemDocument struct {
	text string
	span Span

	mu      sync.Mutex
	pending map[*Type][]Label
	indexes map[*Type]*SortedIndex
}

// NewDocument creates a document over text spanning [0, len(text)).
func NewDocument(text string) *MemDocument {
	return &MemDocument{
		text:    text,
		span:    Span{Begin: 0, End: len(text)},
		pending: make(map[*Type][]Label),
		indexes: make(map[*Type]*SortedIndex),
	}
}

// NewDocumentSpan creates a document without text covering span.
func NewDocumentSpan(span Span) *MemDocument {
	d := NewDocument("")
	d.span = span
	return d
}

// Text returns the document text.
func (d *MemDocument) Text() string {
	return d.text
}

// Covered returns the text covered by s.
func (d *MemDocument) Covered(s Span) string {
	return s.Text(d.text)
}

// Span implements Document.
func (d *MemDocument) Span() Span {
	return d.span
}

// Add appends labels to the document. Every label needs a type and a span
// inside the document span.
func (d *MemDocument) Add(labels ...Label) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range labels {
		if l.Type == nil {
			return fmt.Errorf("label: add %s: label has no type", l.Span)
		}
		if !l.Span.Valid() || !d.span.Contains(l.Span) {
			return fmt.Errorf("label: add %s: span outside document %s", l, d.span)
		}
		d.pending[l.Type] = append(d.pending[l.Type], l)
	}
	return nil
}

// MustAdd is like Add but panics on error.
func (d *MemDocument) MustAdd(labels ...Label) {
	if err := d.Add(labels...); err != nil {
		panic(err)
	}
}

// Index implements Document.
func (d *MemDocument) Index(t *Type) Index {
	d.mu.Lock()
	defer d.mu.Unlock()
	if added := d.pending[t]; len(added) > 0 {
		var merged []Label
		if idx := d.indexes[t]; idx != nil {
			merged = append(merged, idx.labels...)
		}
		merged = append(merged, added...)
		d.indexes[t] = NewSortedIndex(merged)
		delete(d.pending, t)
	}
	if idx := d.indexes[t]; idx != nil {
		return idx
	}
	return EmptyIndex
}

// Types returns the types that have at least one label, sorted by name.
func (d *MemDocument) Types() []*Type {
	d.mu.Lock()
	defer d.mu.Unlock()
	seen := make(map[*Type]bool)
	var out []*Type
	for t := range d.indexes {
		seen[t] = true
		out = append(out, t)
	}
	for t := range d.pending {
		if !seen[t] {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *Type) int { return strings.Compare(a.name, b.name) })
	return out
}
