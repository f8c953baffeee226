package labeler

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/surgebase/porter2"

	"github.com/coregx/corelabel/label"
)

// DefaultStemMinLength is the shortest word the tokenizer stems
const DefaultStemMinLength = 3

// Token is the value of a label produced by the Tokenizer.
type Token struct {
	Text    string
	Lower   string
	Stem    string
	Numeric bool
}

// RegisterToken registers a token type named name with the properties
// text, lower, stem and numeric.
func RegisterToken(reg *label.Registry, name string) (*label.Type, error) {
	return reg.Register(name,
		label.StringProperty("text", func(t Token) string { return t.Text }),
		label.StringProperty("lower", func(t Token) string { return t.Lower }),
		label.StringProperty("stem", func(t Token) string { return t.Stem }),
		label.BoolProperty("numeric", func(t Token) bool { return t.Numeric }),
	)
}

// Tokenizer splits document text into tokens: runs of letters and digits,
// and single punctuation or symbol characters. Whitespace separates tokens
// and is never part of one.
type Tokenizer struct {
	typ *label.Type
	// StemMinLength is the shortest word that gets stemmed; shorter words
	// use their lower-cased text as the stem.
	StemMinLength int
}

// NewTokenizer creates a tokenizer emitting labels of type t, which must
// have been registered with RegisterToken.
func NewTokenizer(t *label.Type) *Tokenizer {
	return &Tokenizer{typ: t, StemMinLength: DefaultStemMinLength}
}

// Name returns the stage name used in logs
func (t *Tokenizer) Name() string {
	return "tokenizer"
}

// Label implements Labeler.
func (t *Tokenizer) Label(ctx context.Context, doc *label.MemDocument) error {
	text := doc.Text()
	var labels []label.Label
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			start := i
			for i < len(text) {
				r, size = utf8.DecodeRuneInString(text[i:])
				if !isWordRune(r) {
					break
				}
				i += size
			}
			labels = append(labels, t.token(text, start, i))
		default:
			labels = append(labels, t.token(text, i, i+size))
			i += size
		}
		if len(labels)%1024 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return doc.Add(labels...)
}

func (t *Tokenizer) token(text string, begin, end int) label.Label {
	word := text[begin:end]
	lower := strings.ToLower(word)
	tok := Token{Text: word, Lower: lower, Stem: lower}
	if isNumeric(word) {
		tok.Numeric = true
	} else if utf8.RuneCountInString(lower) >= t.StemMinLength {
		tok.Stem = porter2.Stem(lower)
	}
	return label.New(t.typ, label.NewSpan(begin, end), tok)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return word != ""
}
