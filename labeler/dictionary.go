package labeler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/corelabel/label"
)

// Term is one dictionary entry: an identifier and the phrases that mention
// it. A term without phrases is found by its identifier.
type Term struct {
	ID      string
	Phrases []string
}

// Mention is the value of a label produced by a Dictionary.
type Mention struct {
	// Text is the covered document text
	Text string
	// Term is the ID of the matched term
	Term string
}

// RegisterMention registers a dictionary mention type named name with the
// properties text and term.
func RegisterMention(reg *label.Registry, name string) (*label.Type, error) {
	return reg.Register(name,
		label.StringProperty("text", func(m Mention) string { return m.Text }),
		label.StringProperty("term", func(m Mention) string { return m.Term }),
	)
}

// DictionaryConfig configures a Dictionary.
type DictionaryConfig struct {
	// Name identifies the dictionary in logs.
	Name string

	// WholeWord rejects mentions that start or end inside a word.
	WholeWord bool
}

// Dictionary finds term phrases in document text with an Aho-Corasick
// automaton. Matching is ASCII case-insensitive and scans left to right
// without overlaps; where several phrases start at the same offset the
// longest wins.
type Dictionary struct {
	typ    *label.Type
	config DictionaryConfig
	ac     *ahocorasick.Automaton
	// terms maps a folded phrase to its term ID
	terms map[string]string
}

// NewDictionary builds a dictionary emitting labels of type t, which must
// have been registered with RegisterMention.
func NewDictionary(t *label.Type, terms []Term, config DictionaryConfig) (*Dictionary, error) {
	phrases := make(map[string]string)
	for _, term := range terms {
		if term.ID == "" {
			return nil, fmt.Errorf("labeler: dictionary %q: term with empty ID", config.Name)
		}
		list := term.Phrases
		if len(list) == 0 {
			list = []string{term.ID}
		}
		for _, p := range list {
			folded := string(foldASCII(strings.TrimSpace(p)))
			if folded == "" {
				continue
			}
			if prev, dup := phrases[folded]; dup && prev != term.ID {
				return nil, fmt.Errorf("labeler: dictionary %q: phrase %q belongs to %q and %q",
					config.Name, p, prev, term.ID)
			}
			phrases[folded] = term.ID
		}
	}
	if len(phrases) == 0 {
		return nil, fmt.Errorf("labeler: dictionary %q has no phrases", config.Name)
	}

	// Longer phrases first, so a leftmost-first automaton prefers them.
	ordered := make([]string, 0, len(phrases))
	for p := range phrases {
		ordered = append(ordered, p)
	}
	slices.SortFunc(ordered, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	builder := ahocorasick.NewBuilder()
	for _, p := range ordered {
		builder.AddPattern([]byte(p))
	}
	ac, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("labeler: dictionary %q: %w", config.Name, err)
	}
	return &Dictionary{typ: t, config: config, ac: ac, terms: phrases}, nil
}

// Name returns the stage name used in logs
func (d *Dictionary) Name() string {
	if d.config.Name != "" {
		return "dictionary " + d.config.Name
	}
	return "dictionary"
}

// Len returns the number of distinct phrases
func (d *Dictionary) Len() int {
	return len(d.terms)
}

// Label implements Labeler.
func (d *Dictionary) Label(ctx context.Context, doc *label.MemDocument) error {
	text := doc.Text()
	haystack := foldASCII(text)
	var labels []label.Label
	for at := 0; at < len(haystack); {
		if err := ctx.Err(); err != nil {
			return err
		}
		m := d.ac.Find(haystack, at)
		if m == nil {
			break
		}
		if d.config.WholeWord && !wordBoundaries(text, m.Start, m.End) {
			at = m.Start + 1
			continue
		}
		term := d.terms[string(haystack[m.Start:m.End])]
		labels = append(labels, label.New(d.typ, label.NewSpan(m.Start, m.End),
			Mention{Text: text[m.Start:m.End], Term: term}))
		at = max(m.End, m.Start+1)
	}
	return doc.Add(labels...)
}

// foldASCII lower-cases ASCII letters only, so byte offsets into the
// result equal offsets into s.
func foldASCII(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return b
}

// wordBoundaries reports whether [begin, end) neither starts nor ends
// inside a word of text.
func wordBoundaries(text string, begin, end int) bool {
	if begin > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:begin])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}
