package label

import "fmt"

// NameError reports a name that does not resolve: an unknown type or alias,
// capture group, or property.
type NameError struct {
	// Kind is what was looked up: "type", "group" or "property".
	Kind string
	Name string
	// Owner is the type a property was looked up on, if any.
	Owner string
}

// Error implements the error interface
func (e *NameError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("unknown %s %q on type %s", e.Kind, e.Name, e.Owner)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// TypeMismatchError reports a property or backreference whose value has a
// different kind than the one it is compared against.
type TypeMismatchError struct {
	Type     string
	Property string
	Want     Kind
	Got      Kind
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %s.%s is %s, want %s", e.Type, e.Property, e.Got, e.Want)
}
