package automaton

import (
	"fmt"

	"github.com/coregx/corelabel/label"
)

// OperandKind identifies what a Constraint compares a property against.
type OperandKind uint8

const (
	// OperandLiteral compares against a literal value from the pattern
	OperandLiteral OperandKind = iota

	// OperandGroupSpan compares a span property against an earlier
	// group's span ($name)
	OperandGroupSpan

	// OperandGroupProperty compares against a property of the label
	// captured by an earlier typed group ($name.prop)
	OperandGroupProperty
)

// Constraint is one property test of a Match node. Property accessors are
// resolved at compile time.
type Constraint struct {
	// Property is read from the candidate label
	Property label.Property

	Operand OperandKind

	// Literal holds the value for OperandLiteral
	Literal label.Value

	// Group and GroupName identify the referenced capture group
	Group     int
	GroupName string

	// RefType and RefProperty are the recorded type of the referenced
	// typed group and the property read from its label
	RefType     *label.Type
	RefProperty label.Property
}

// String returns the constraint as pattern text
func (c Constraint) String() string {
	switch c.Operand {
	case OperandLiteral:
		return fmt.Sprintf("%s=%s", c.Property.Name, c.Literal)
	case OperandGroupSpan:
		return fmt.Sprintf("%s=$%s", c.Property.Name, c.GroupName)
	case OperandGroupProperty:
		return fmt.Sprintf("%s=$%s.%s", c.Property.Name, c.GroupName, c.RefProperty.Name)
	default:
		return "?"
	}
}
