package syntax

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/coregx/corelabel/automaton"
	"github.com/coregx/corelabel/label"
)

const eof rune = 0

type parser struct {
	resolver label.Resolver
	pattern  string
	src      []rune
	pos      int
	config   CompilerConfig
	b        *automaton.Builder
	depth    int
}

func newParser(r label.Resolver, pattern string, config CompilerConfig) *parser {
	return &parser{
		resolver: r,
		pattern:  pattern,
		src:      []rune(pattern),
		config:   config,
		b:        automaton.NewBuilder(),
	}
}

func (p *parser) errorf(format string, args ...any) *Error {
	return &Error{Pattern: p.pattern, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) errorAt(offset int, err error, format string, args ...any) *Error {
	return &Error{Pattern: p.pattern, Offset: offset, Message: fmt.Sprintf(format, args...), Err: err}
}

// peek returns the current character without consuming it
func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	return p.src[p.pos]
}

// peekAt returns the character i positions ahead
func (p *parser) peekAt(i int) rune {
	if p.pos+i >= len(p.src) {
		return eof
	}
	return p.src[p.pos+i]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// peekTok skips whitespace and returns the next character
func (p *parser) peekTok() rune {
	p.skipSpace()
	return p.peek()
}

// accept consumes ch if it is the next token
func (p *parser) accept(ch rune) bool {
	if p.peekTok() == ch {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(ch rune, msg string) error {
	if !p.accept(ch) {
		return p.errorf("%s", msg)
	}
	return nil
}

func isIdentRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// ident reads an identifier at the current position; it may be empty
func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentRune(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.config.MaxNestingDepth {
		return p.errorAt(p.pos, ErrNestingTooDeep, "nesting deeper than %d", p.config.MaxNestingDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// parseAlts parses an alternation of concatenations.
func (p *parser) parseAlts() (frag, error) {
	first, err := p.parseConcat()
	if err != nil {
		return emptyFrag, err
	}
	if p.peekTok() != '|' {
		return first, nil
	}
	alts := []frag{first}
	for p.accept('|') {
		f, err := p.parseConcat()
		if err != nil {
			return emptyFrag, err
		}
		alts = append(alts, f)
	}
	return p.alternation(alts), nil
}

// parseConcat parses a sequence of quantified elements.
func (p *parser) parseConcat() (frag, error) {
	var elems []frag
	for {
		var (
			f   frag
			err error
		)
		switch p.peekTok() {
		case '|', ')', ']', '&', eof:
			return p.sequence(elems), nil
		case '(':
			f, err = p.parseGroup()
		case '[':
			f, err = p.parsePinning()
		default:
			f, err = p.parseTypeMatch(false)
		}
		if err != nil {
			return emptyFrag, err
		}
		f, err = p.parseQuantifier(f)
		if err != nil {
			return emptyFrag, err
		}
		if !f.empty() {
			elems = append(elems, f)
		}
	}
}

// parseQuantifier applies a following quantifier, if any, to f.
func (p *parser) parseQuantifier(f frag) (frag, error) {
	var min, max int
	optional := false
	switch p.peekTok() {
	case '?':
		p.pos++
		optional = true
	case '*':
		p.pos++
		min, max = 0, p.config.LoopLimit
	case '+':
		p.pos++
		min, max = 1, p.config.LoopLimit
	case '{':
		var err error
		if min, max, err = p.parseRange(); err != nil {
			return emptyFrag, err
		}
	default:
		return f, nil
	}

	// The policy suffix must follow the quantifier directly.
	policy := automaton.Greedy
	switch p.peek() {
	case '?':
		p.pos++
		policy = automaton.Lazy
	case '+':
		p.pos++
		policy = automaton.Possessive
	}

	if f.empty() {
		return f, nil
	}
	if optional {
		return p.optional(f, policy), nil
	}
	return p.loop(f, policy, min, max), nil
}

// parseRange parses {min}, {min,} or {min,max}.
func (p *parser) parseRange() (min, max int, err error) {
	start := p.pos
	p.pos++ // '{'
	p.skipSpace()
	min, err = p.parseCount()
	if err != nil {
		return 0, 0, err
	}
	max = min
	if p.accept(',') {
		if p.peekTok() == '}' {
			max = p.config.LoopLimit
			if min > max {
				return 0, 0, p.errorAt(start, nil, "repetition minimum %d exceeds loop limit %d", min, max)
			}
		} else if max, err = p.parseCount(); err != nil {
			return 0, 0, err
		}
	}
	if err := p.expect('}', "unclosed curly bracket repetition"); err != nil {
		return 0, 0, err
	}
	if max < min {
		return 0, 0, p.errorAt(start, nil, "curly bracket repetition illegal range {%d,%d}", min, max)
	}
	return min, max, nil
}

func (p *parser) parseCount() (int, error) {
	p.skipSpace()
	start := p.pos
	for unicode.IsDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("curly brackets should be in format {min[,max]}")
	}
	n, err := strconv.Atoi(string(p.src[start:p.pos]))
	if err != nil {
		return 0, p.errorAt(start, err, "bad repetition count")
	}
	return n, nil
}

// parseGroup parses one of the parenthesized forms.
func (p *parser) parseGroup() (frag, error) {
	open := p.pos
	p.pos++ // '('
	if err := p.enter(); err != nil {
		return emptyFrag, err
	}
	defer p.leave()

	var (
		result frag
		err    error
	)
	if p.peek() == '?' {
		p.pos++
		flag := p.peek()
		p.pos++
		switch flag {
		case ':':
			result, err = p.parseAlts()
		case '=', '!':
			var sub frag
			if sub, err = p.parseAlts(); err == nil {
				la := p.b.AddLookahead(flag == '!', p.subchain(sub))
				result = frag{head: la, tail: la}
			}
		case '>':
			var sub frag
			if sub, err = p.parseAlts(); err == nil {
				at := p.b.AddAtomic(p.subchain(sub))
				result = frag{head: at, tail: at}
			}
		case '<':
			var name string
			if name, err = p.groupName(); err != nil {
				return emptyFrag, err
			}
			g, allocErr := p.b.AllocGroup(name, nil)
			if allocErr != nil {
				return emptyFrag, p.errorAt(open, allocErr, "duplicate capturing group name %q", name)
			}
			var body frag
			if body, err = p.parseAlts(); err == nil {
				result = p.capture(body, g)
			}
		default:
			p.pos--
			return emptyFrag, p.errorf("unknown group flag %q", flag)
		}
	} else {
		g, _ := p.b.AllocGroup("", nil)
		var body frag
		if body, err = p.parseAlts(); err == nil {
			result = p.capture(body, g)
		}
	}
	if err != nil {
		return emptyFrag, err
	}
	if !p.accept(')') {
		return emptyFrag, p.errorAt(open, nil, "unclosed group")
	}
	return result, nil
}

func (p *parser) groupName() (string, error) {
	start := p.pos
	name := p.ident()
	if p.peek() != '>' {
		if p.peek() == eof {
			return "", p.errorAt(start, nil, "unclosed group name")
		}
		return "", p.errorf("non alphanumeric character in capturing group name")
	}
	p.pos++
	if name == "" {
		return "", p.errorAt(start, nil, "0-length named capturing group")
	}
	return name, nil
}

// parsePinning parses [base & cond & ...].
func (p *parser) parsePinning() (frag, error) {
	open := p.pos
	p.pos++ // '['
	if err := p.enter(); err != nil {
		return emptyFrag, err
	}
	defer p.leave()

	seek := false
	if p.peekTok() == '?' {
		p.pos++
		seek = true
	}
	base, err := p.parseTypeMatch(seek)
	if err != nil {
		return emptyFrag, err
	}
	var conds []automaton.NodeID
	for p.accept('&') {
		c, err := p.parseAlts()
		if err != nil {
			return emptyFrag, err
		}
		conds = append(conds, p.subchain(c))
	}
	if !p.accept(']') {
		if p.peek() == eof {
			return emptyFrag, p.errorAt(open, nil, "unclosed pinning bracket")
		}
		return emptyFrag, p.errorf("expected '&' or ']' in pinning")
	}
	if len(conds) == 0 {
		return base, nil
	}
	pin := p.b.AddPin(conds)
	p.link(base, pin)
	return frag{head: base.head, tail: pin}, nil
}

// parseTypeMatch parses type[:var]{props}.
func (p *parser) parseTypeMatch(seek bool) (frag, error) {
	p.skipSpace()
	start := p.pos
	typeName := p.ident()
	if typeName == "" {
		return emptyFrag, p.errorf("illegal identifier %q", p.peek())
	}
	var varName string
	varStart := p.pos
	if p.peek() == ':' {
		p.pos++
		varStart = p.pos
		if varName = p.ident(); varName == "" {
			return emptyFrag, p.errorf("illegal identifier after ':'")
		}
	}

	t, ok := p.resolver.Resolve(typeName)
	if !ok {
		return emptyFrag, p.errorAt(start, &label.NameError{Kind: "type", Name: typeName},
			"couldn't find a type with alias or name %s", typeName)
	}

	var constraints []automaton.Constraint
	if p.peekTok() == '{' && !p.rangeFollows() {
		var err error
		if constraints, err = p.parseProperties(t); err != nil {
			return emptyFrag, err
		}
	}

	group := -1
	if varName != "" {
		g, err := p.b.AllocGroup(varName, t)
		if err != nil {
			return emptyFrag, p.errorAt(varStart, err, "duplicate capturing group name %q", varName)
		}
		group = g
	}
	m := p.b.AddMatch(t, seek, group, constraints)
	return frag{head: m, tail: m}, nil
}

// rangeFollows reports whether the '{' at the current position opens a
// repetition range rather than a property list.
func (p *parser) rangeFollows() bool {
	for i := 1; ; i++ {
		ch := p.peekAt(i)
		if unicode.IsSpace(ch) {
			continue
		}
		return unicode.IsDigit(ch)
	}
}
