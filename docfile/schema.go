// Package docfile loads label schemas and labeled documents from files.
//
// A schema is a TOML file declaring label types with typed properties,
// short aliases, phrase dictionaries and pattern rules. A document is a
// YAML or JSON file holding the text and its labels:
//
//	text: "the big dog"
//	labels:
//	  - {type: Token, begin: 0, end: 3, attrs: {pos: DET}}
//	  - {type: Token, begin: 4, end: 7, attrs: {pos: ADJ}}
//
// Labels loaded from files carry label.Attrs values read through
// label.AttrProperty.
package docfile

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/pelletier/go-toml/v2"

	"github.com/coregx/corelabel"
	"github.com/coregx/corelabel/label"
	"github.com/coregx/corelabel/labeler"
)

// Schema is the decoded form of a schema file.
type Schema struct {
	Types        []TypeSpec       `toml:"types"`
	Dictionaries []DictionarySpec `toml:"dictionaries"`
	Rules        []RuleSpec       `toml:"rules"`
}

// TypeSpec declares a label type. Properties maps property names to kind
// names: string, number, bool or span.
type TypeSpec struct {
	Name       string            `toml:"name"`
	Aliases    []string          `toml:"aliases"`
	Properties map[string]string `toml:"properties"`
}

// DictionarySpec declares a phrase dictionary emitting labels of Type.
type DictionarySpec struct {
	Name      string     `toml:"name"`
	Type      string     `toml:"type"`
	WholeWord bool       `toml:"whole_word"`
	Terms     []TermSpec `toml:"terms"`
}

// TermSpec is one dictionary term.
type TermSpec struct {
	ID      string   `toml:"id"`
	Phrases []string `toml:"phrases"`
}

// RuleSpec declares a pattern rule deriving labels of Output from the
// whole match, or from Group when set.
type RuleSpec struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	Output  string `toml:"output"`
	Group   string `toml:"group"`
}

// ParseSchema decodes and validates a schema. Unknown keys are errors.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("docfile: decode schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads and parses the schema file at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docfile: read schema: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Schema) validate() error {
	for i, t := range s.Types {
		if t.Name == "" {
			return fmt.Errorf("docfile: types[%d]: missing name", i)
		}
		for prop, kind := range t.Properties {
			if _, err := ParseKind(kind); err != nil {
				return fmt.Errorf("docfile: type %s: property %s: %w", t.Name, prop, err)
			}
		}
	}
	for i, d := range s.Dictionaries {
		if d.Type == "" {
			return fmt.Errorf("docfile: dictionaries[%d]: missing type", i)
		}
		if len(d.Terms) == 0 {
			return fmt.Errorf("docfile: dictionary %q: no terms", d.Name)
		}
	}
	for i, r := range s.Rules {
		if r.Pattern == "" || r.Output == "" {
			return fmt.Errorf("docfile: rules[%d]: pattern and output are required", i)
		}
	}
	return nil
}

// ParseKind maps a kind name used in schema files to a label.Kind.
func ParseKind(name string) (label.Kind, error) {
	switch name {
	case "string":
		return label.KindString, nil
	case "number":
		return label.KindNumber, nil
	case "bool":
		return label.KindBool, nil
	case "span":
		return label.KindSpan, nil
	default:
		return label.KindInvalid, fmt.Errorf("unknown kind %q (want string, number, bool or span)", name)
	}
}

// Register adds the schema's types and aliases to reg. Dictionary and rule
// output types that the schema does not declare are registered as mention
// and derived types.
func (s *Schema) Register(reg *label.Registry) error {
	for _, t := range s.Types {
		props := make([]label.Property, 0, len(t.Properties))
		for _, name := range slices.Sorted(maps.Keys(t.Properties)) {
			kind, err := ParseKind(t.Properties[name])
			if err != nil {
				return err
			}
			props = append(props, label.AttrProperty(name, kind))
		}
		if _, err := reg.Register(t.Name, props...); err != nil {
			return fmt.Errorf("docfile: %w", err)
		}
		for _, alias := range t.Aliases {
			if err := reg.Alias(alias, t.Name); err != nil {
				return fmt.Errorf("docfile: alias %s: %w", alias, err)
			}
		}
	}
	for _, d := range s.Dictionaries {
		if _, ok := reg.Resolve(d.Type); ok {
			continue
		}
		if _, err := labeler.RegisterMention(reg, d.Type); err != nil {
			return fmt.Errorf("docfile: %w", err)
		}
	}
	for _, r := range s.Rules {
		if _, ok := reg.Resolve(r.Output); ok {
			continue
		}
		if _, err := labeler.RegisterDerived(reg, r.Output); err != nil {
			return fmt.Errorf("docfile: %w", err)
		}
	}
	return nil
}

// Labelers builds the schema's dictionaries followed by its rules, in file
// order. Rule patterns are compiled through cache. The types must already
// be registered with Register.
func (s *Schema) Labelers(reg label.Resolver, cache *corelabel.Cache) ([]labeler.Labeler, error) {
	var out []labeler.Labeler
	for _, d := range s.Dictionaries {
		t, ok := reg.Resolve(d.Type)
		if !ok {
			return nil, fmt.Errorf("docfile: dictionary %q: %w", d.Name, &label.NameError{Kind: "type", Name: d.Type})
		}
		terms := make([]labeler.Term, len(d.Terms))
		for i, term := range d.Terms {
			terms[i] = labeler.Term{ID: term.ID, Phrases: term.Phrases}
		}
		dict, err := labeler.NewDictionary(t, terms, labeler.DictionaryConfig{Name: d.Name, WholeWord: d.WholeWord})
		if err != nil {
			return nil, err
		}
		out = append(out, dict)
	}
	for _, r := range s.Rules {
		t, ok := reg.Resolve(r.Output)
		if !ok {
			return nil, fmt.Errorf("docfile: rule %q: %w", r.Name, &label.NameError{Kind: "type", Name: r.Output})
		}
		p, err := cache.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("docfile: rule %q: %w", r.Name, err)
		}
		rule, err := labeler.NewRule(r.Name, p, t, r.Group)
		if err != nil {
			return nil, fmt.Errorf("docfile: rule %q: %w", r.Name, err)
		}
		out = append(out, rule)
	}
	return out, nil
}
