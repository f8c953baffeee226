// Package syntax compiles label-pattern text into an automaton.
//
// The grammar is parsed by recursive descent with one character of
// lookahead; whitespace between tokens is insignificant:
//
//	pattern    = alts
//	alts       = concat { "|" concat }
//	concat     = { element [ quantifier ] }
//	element    = typematch | group | pinning
//	group      = "(" [ "?:" | "?=" | "?!" | "?>" | "?<" name ">" ] alts ")"
//	pinning    = "[" [ "?" ] typematch { "&" alts } "]"
//	typematch  = type [ ":" var ] [ "{" prop "=" value { "," prop "=" value } "}" ]
//	quantifier = ( "?" | "*" | "+" | "{" min [ "," [ max ] ] "}" ) [ "?" | "+" ]
//	value      = string | number | bool | "$" group [ "." prop ]
//
// Type names are resolved through a label.Resolver and property names
// through the resolved type's property table, so every name error is
// reported at compile time.
package syntax

import (
	"errors"
	"fmt"
)

// ErrNestingTooDeep indicates the pattern nests groups or pinnings deeper
// than CompilerConfig.MaxNestingDepth.
var ErrNestingTooDeep = errors.New("pattern nesting too deep")

// Error is a pattern compilation failure. Offset is the character offset
// in Pattern where the problem was detected.
//
// Err is set when the failure has a typed cause: a *label.NameError for an
// unknown type, group or property, a *label.TypeMismatchError for a
// value of the wrong kind, or ErrNestingTooDeep.
type Error struct {
	Pattern string
	Offset  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("error parsing label pattern at offset %d: %s: `%s`", e.Offset, e.Message, e.Pattern)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}
