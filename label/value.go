package label

import (
	"fmt"
	"strconv"
)

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	// KindInvalid is the zero Value's kind
	KindInvalid Kind = iota

	// KindString is a text value
	KindString

	// KindNumber is a numeric value. Integers and decimals share this kind
	// and compare numerically.
	KindNumber

	// KindBool is a boolean value
	KindBool

	// KindSpan is a span value
	KindSpan
)

// String returns a human-readable representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSpan:
		return "span"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is a tagged property value.
// The zero Value has KindInvalid and is equal to nothing, not even itself.
type Value struct {
	kind Kind
	str  string
	num  float64
	span Span
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a number Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Int returns a number Value holding n.
func Int(n int) Value {
	return Value{kind: KindNumber, num: float64(n)}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// SpanValue returns a span Value.
func SpanValue(s Span) Value {
	return Value{kind: KindSpan, span: s}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Str returns the string payload. It is "" for other kinds.
func (v Value) Str() string {
	return v.str
}

// Num returns the numeric payload. It is 0 for other kinds.
func (v Value) Num() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// Truth returns the boolean payload. It is false for other kinds.
func (v Value) Truth() bool {
	return v.kind == KindBool && v.num != 0
}

// SpanVal returns the span payload. It is NoSpan for other kinds.
func (v Value) SpanVal() Span {
	if v.kind != KindSpan {
		return NoSpan
	}
	return v.span
}

// Equal reports whether v and o have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber, KindBool:
		return v.num == o.num
	case KindSpan:
		return v.span == o.span
	default:
		return false
	}
}

// String formats v the way it would be written in a pattern.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Truth())
	case KindSpan:
		return v.span.String()
	default:
		return "<invalid>"
	}
}

// Attrs is a map-backed label value, used for labels loaded from files or
// derived by rules. Read its entries with AttrProperty.
type Attrs map[string]Value
