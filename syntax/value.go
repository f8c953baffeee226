package syntax

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

// parseProperties parses {prop=value, ...} for a match of type t.
func (p *parser) parseProperties(t *label.Type) ([]automaton.Constraint, error) {
	open := p.pos
	p.pos++ // '{'
	var out []automaton.Constraint
	for {
		p.skipSpace()
		nameAt := p.pos
		name := p.ident()
		if name == "" {
			if p.peek() == eof {
				return nil, p.errorAt(open, nil, "unclosed property list")
			}
			return nil, p.errorf("invalid property name")
		}
		prop, ok := t.Property(name)
		if !ok {
			return nil, p.errorAt(nameAt, &label.NameError{Kind: "property", Name: name, Owner: t.Name()},
				"type %s has no property %q", t.Name(), name)
		}
		if err := p.expect('=', "invalid property value format, expected '='"); err != nil {
			return nil, err
		}
		c, err := p.parseValue(prop, t)
		if err != nil {
			return nil, err
		}
		out = append(out, c)

		if p.accept(',') {
			continue
		}
		if p.accept('}') {
			return out, nil
		}
		if p.peek() == eof {
			return nil, p.errorAt(open, nil, "unclosed property list")
		}
		return nil, p.errorf("expected ',' or '}' in property list")
	}
}

// parseValue parses the right-hand side of prop=value.
func (p *parser) parseValue(prop label.Property, t *label.Type) (automaton.Constraint, error) {
	at := p.pos
	c := automaton.Constraint{Property: prop, Group: -1}
	switch ch := p.peekTok(); {
	case ch == '"':
		s, err := p.parseString()
		if err != nil {
			return c, err
		}
		c.Literal = label.String(s)
	case ch == '-' || unicode.IsDigit(ch):
		n, err := p.parseNumber()
		if err != nil {
			return c, err
		}
		c.Literal = label.Number(n)
	case ch == '$':
		return p.parseBackreference(prop, t)
	case unicode.IsLetter(ch):
		b, err := p.parseBool()
		if err != nil {
			return c, err
		}
		c.Literal = label.Bool(b)
	default:
		return c, p.errorf("illegal property value")
	}
	if c.Literal.Kind() != prop.Kind {
		return c, p.errorAt(at, &label.TypeMismatchError{
			Type: t.Name(), Property: prop.Name, Want: prop.Kind, Got: c.Literal.Kind(),
		}, "property %s.%s is %s, not %s", t.Name(), prop.Name, prop.Kind, c.Literal.Kind())
	}
	return c, nil
}

// parseString parses a double-quoted, backslash-escaped string.
func (p *parser) parseString() (string, error) {
	open := p.pos
	p.pos++ // '"'
	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorAt(open, nil, "unterminated string")
		}
		ch := p.src[p.pos]
		p.pos++
		switch ch {
		case '"':
			return sb.String(), nil
		case '\\':
			if p.pos >= len(p.src) {
				return "", p.errorAt(open, nil, "unterminated string")
			}
			sb.WriteRune(p.src[p.pos])
			p.pos++
		default:
			sb.WriteRune(ch)
		}
	}
}

// parseNumber parses an integer or decimal literal.
func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	digits := 0
	dot := false
	for {
		ch := p.peek()
		if unicode.IsDigit(ch) {
			digits++
		} else if ch == '.' && !dot {
			dot = true
		} else {
			break
		}
		p.pos++
	}
	if digits == 0 {
		return 0, p.errorAt(start, nil, "invalid number")
	}
	n, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil {
		return 0, p.errorAt(start, err, "invalid number")
	}
	return n, nil
}

// parseBool parses a boolean word. Only the first letter counts:
// t, T, y, Y are true and f, F, n, N are false.
func (p *parser) parseBool() (bool, error) {
	var v bool
	switch p.peek() {
	case 't', 'T', 'y', 'Y':
		v = true
	case 'f', 'F', 'n', 'N':
		v = false
	default:
		return false, p.errorf("invalid property value")
	}
	for unicode.IsLetter(p.peek()) {
		p.pos++
	}
	return v, nil
}

// parseBackreference parses $group or $group.prop.
func (p *parser) parseBackreference(prop label.Property, t *label.Type) (automaton.Constraint, error) {
	c := automaton.Constraint{Property: prop, Group: -1}
	p.pos++ // '$'
	nameAt := p.pos
	name := p.ident()
	if name == "" {
		return c, p.errorf("missing backreference group name")
	}
	g, gt, ok := p.b.LookupGroup(name)
	if !ok {
		return c, p.errorAt(nameAt, &label.NameError{Kind: "group", Name: name},
			"backreference to unknown group %q", name)
	}
	c.Group = g
	c.GroupName = name

	if p.peek() != '.' {
		c.Operand = automaton.OperandGroupSpan
		if prop.Kind != label.KindSpan {
			return c, p.errorAt(nameAt, &label.TypeMismatchError{
				Type: t.Name(), Property: prop.Name, Want: prop.Kind, Got: label.KindSpan,
			}, "span backreference $%s compared with %s property %s", name, prop.Kind, prop.Name)
		}
		return c, nil
	}

	p.pos++ // '.'
	refAt := p.pos
	refName := p.ident()
	if refName == "" {
		return c, p.errorf("missing backreference property name")
	}
	if gt == nil {
		return c, p.errorAt(nameAt, &label.NameError{Kind: "group", Name: name},
			"group %q does not capture a label, so it has no property %q", name, refName)
	}
	ref, ok := gt.Property(refName)
	if !ok {
		return c, p.errorAt(refAt, &label.NameError{Kind: "property", Name: refName, Owner: gt.Name()},
			"type %s has no property %q", gt.Name(), refName)
	}
	if ref.Kind != prop.Kind {
		return c, p.errorAt(refAt, &label.TypeMismatchError{
			Type: gt.Name(), Property: refName, Want: prop.Kind, Got: ref.Kind,
		}, "backreference $%s.%s is %s, not %s", name, refName, ref.Kind, prop.Kind)
	}
	c.Operand = automaton.OperandGroupProperty
	c.RefType = gt
	c.RefProperty = ref
	return c, nil
}
