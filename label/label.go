package label

import "fmt"

// Label is a typed, attributed span of a document.
// Value is opaque to the engine; its properties are read through Type.
type Label struct {
	Span
	Type  *Type
	Value any
}

// New creates a label of type t over span.
func New(t *Type, span Span, value any) Label {
	return Label{Span: span, Type: t, Value: value}
}

// IsZero reports whether l is the zero Label (no type).
func (l Label) IsZero() bool {
	return l.Type == nil
}

// Property reads the named property of l through its type's property table.
func (l Label) Property(name string) (Value, error) {
	if l.Type == nil {
		return Value{}, &NameError{Kind: "property", Name: name}
	}
	p, ok := l.Type.Property(name)
	if !ok {
		return Value{}, &NameError{Kind: "property", Name: name, Owner: l.Type.name}
	}
	v := p.Get(l)
	if v.Kind() != p.Kind {
		return Value{}, &TypeMismatchError{Type: l.Type.name, Property: name, Want: p.Kind, Got: v.Kind()}
	}
	return v, nil
}

// String returns "Type[b, e)".
func (l Label) String() string {
	if l.Type == nil {
		return "<none>" + l.Span.String()
	}
	return fmt.Sprintf("%s%s", l.Type.name, l.Span)
}
