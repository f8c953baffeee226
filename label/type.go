package label

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Property is one readable, typed property of a label type.
// Get must return a Value of the declared Kind; a Value of any other kind is
// reported by the engine as a TypeMismatchError.
type Property struct {
	Name string
	Kind Kind
	Get  func(l Label) Value
}

// Built-in properties present on every Type.
const (
	PropSpan  = "span"
	PropBegin = "begin"
	PropEnd   = "end"
)

var builtins = []Property{
	{Name: PropSpan, Kind: KindSpan, Get: func(l Label) Value { return SpanValue(l.Span) }},
	{Name: PropBegin, Kind: KindNumber, Get: func(l Label) Value { return Int(l.Begin) }},
	{Name: PropEnd, Kind: KindNumber, Get: func(l Label) Value { return Int(l.End) }},
}

// StringProperty reads a string property from label values of type T.
func StringProperty[T any](name string, get func(T) string) Property {
	return Property{Name: name, Kind: KindString, Get: func(l Label) Value {
		v, ok := l.Value.(T)
		if !ok {
			return Value{}
		}
		return String(get(v))
	}}
}

// NumberProperty reads a numeric property from label values of type T.
func NumberProperty[T any](name string, get func(T) float64) Property {
	return Property{Name: name, Kind: KindNumber, Get: func(l Label) Value {
		v, ok := l.Value.(T)
		if !ok {
			return Value{}
		}
		return Number(get(v))
	}}
}

// BoolProperty reads a boolean property from label values of type T.
func BoolProperty[T any](name string, get func(T) bool) Property {
	return Property{Name: name, Kind: KindBool, Get: func(l Label) Value {
		v, ok := l.Value.(T)
		if !ok {
			return Value{}
		}
		return Bool(get(v))
	}}
}

// SpanProperty reads a span property from label values of type T.
func SpanProperty[T any](name string, get func(T) Span) Property {
	return Property{Name: name, Kind: KindSpan, Get: func(l Label) Value {
		v, ok := l.Value.(T)
		if !ok {
			return Value{}
		}
		return SpanValue(get(v))
	}}
}

// AttrProperty reads the named entry of an Attrs label value.
// A missing entry reads as the zero value of kind.
func AttrProperty(name string, kind Kind) Property {
	return Property{Name: name, Kind: kind, Get: func(l Label) Value {
		attrs, ok := l.Value.(Attrs)
		if !ok {
			return Value{}
		}
		if v, ok := attrs[name]; ok {
			return v
		}
		switch kind {
		case KindString:
			return String("")
		case KindNumber:
			return Number(0)
		case KindBool:
			return Bool(false)
		case KindSpan:
			return SpanValue(NoSpan)
		default:
			return Value{}
		}
	}}
}

// Type is a registered label type. Types are compared by identity.
type Type struct {
	name  string
	props map[string]Property
}

// Name returns the registered name of t.
func (t *Type) Name() string {
	return t.name
}

// Property returns the named property, including the built-ins.
func (t *Type) Property(name string) (Property, bool) {
	p, ok := t.props[name]
	return p, ok
}

// Properties returns the property names of t in sorted order.
func (t *Type) Properties() []string {
	names := make([]string, 0, len(t.props))
	for name := range t.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the type name
func (t *Type) String() string {
	return t.name
}

// Resolver maps a name or short alias used in pattern text to a label Type.
type Resolver interface {
	Resolve(name string) (*Type, bool)
}

// Registry holds label types and their aliases. It implements Resolver.
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*Type
	aliases map[string]*Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*Type),
		aliases: make(map[string]*Type),
	}
}

// Register adds a new type with the given properties.
// It fails if the name is taken or a property is declared twice or shadows a
// built-in.
func (r *Registry) Register(name string, props ...Property) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("label: empty type name")
	}
	t := &Type{name: name, props: make(map[string]Property, len(props)+len(builtins))}
	for _, p := range builtins {
		t.props[p.Name] = p
	}
	for _, p := range props {
		if p.Get == nil || p.Kind == KindInvalid {
			return nil, fmt.Errorf("label: type %s: property %q needs a kind and an accessor", name, p.Name)
		}
		if _, dup := t.props[p.Name]; dup {
			return nil, fmt.Errorf("label: type %s: duplicate property %q", name, p.Name)
		}
		t.props[p.Name] = p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.types[name]; taken {
		return nil, fmt.Errorf("label: type %q already registered", name)
	}
	r.types[name] = t
	return t, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, props ...Property) *Type {
	t, err := r.Register(name, props...)
	if err != nil {
		panic(err)
	}
	return t
}

// Alias makes alias resolve to the type registered as name.
func (r *Registry) Alias(alias, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[name]
	if !ok {
		return &NameError{Kind: "type", Name: name}
	}
	if prev, ok := r.aliases[alias]; ok && prev != t {
		return fmt.Errorf("label: alias %q already points to %s", alias, prev.name)
	}
	r.aliases[alias] = t
	return nil
}

// Resolve looks up an alias first, then a registered type name.
func (r *Registry) Resolve(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.aliases[name]; ok {
		return t, true
	}
	t, ok := r.types[name]
	return t, ok
}

// Types returns all registered types sorted by name.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Type) int {
		return strings.Compare(a.name, b.name)
	})
	return out
}
