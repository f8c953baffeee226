package docfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/coregx/corelabel/internal/conv"
	"github.com/coregx/corelabel/label"
)

type fileDocument struct {
	Text   string      `yaml:"text"`
	Labels []fileLabel `yaml:"labels"`
}

type fileLabel struct {
	Type  string         `yaml:"type"`
	Begin int            `yaml:"begin"`
	End   int            `yaml:"end"`
	Attrs map[string]any `yaml:"attrs"`
}

// ParseDocument decodes a YAML or JSON document and resolves its label types
// through r. Attribute values are converted to the kind of the property they
// name; an attribute the type does not declare is a NameError and a value of
// the wrong kind is a TypeMismatchError.
func ParseDocument(r label.Resolver, data []byte) (*label.MemDocument, error) {
	var f fileDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("docfile: decode document: %w", err)
	}

	doc := label.NewDocument(f.Text)
	labels := make([]label.Label, 0, len(f.Labels))
	for i, fl := range f.Labels {
		l, err := fl.resolve(r, len(f.Text))
		if err != nil {
			return nil, fmt.Errorf("docfile: labels[%d]: %w", i, err)
		}
		labels = append(labels, l)
	}
	if err := doc.Add(labels...); err != nil {
		return nil, fmt.Errorf("docfile: %w", err)
	}
	return doc, nil
}

// LoadDocument reads and parses the document file at path.
func LoadDocument(r label.Resolver, path string) (*label.MemDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docfile: read document: %w", err)
	}
	doc, err := ParseDocument(r, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (fl fileLabel) resolve(r label.Resolver, textLen int) (label.Label, error) {
	t, ok := r.Resolve(fl.Type)
	if !ok {
		return label.Label{}, &label.NameError{Kind: "type", Name: fl.Type}
	}
	if fl.Begin < 0 || fl.Begin > fl.End || fl.End > textLen {
		return label.Label{}, fmt.Errorf("span [%d, %d) outside text of length %d", fl.Begin, fl.End, textLen)
	}

	attrs := make(label.Attrs, len(fl.Attrs))
	for _, name := range slices.Sorted(maps.Keys(fl.Attrs)) {
		prop, ok := t.Property(name)
		if !ok || isBuiltin(name) {
			return label.Label{}, &label.NameError{Kind: "property", Name: name, Owner: t.Name()}
		}
		v, err := convert(fl.Attrs[name], prop.Kind)
		if err != nil {
			var mismatch *label.TypeMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Type, mismatch.Property = t.Name(), name
			}
			return label.Label{}, err
		}
		attrs[name] = v
	}
	return label.New(t, label.NewSpan(fl.Begin, fl.End), attrs), nil
}

func isBuiltin(name string) bool {
	return name == label.PropSpan || name == label.PropBegin || name == label.PropEnd
}

// convert maps a decoded YAML scalar or list to a Value of kind want.
func convert(raw any, want label.Kind) (label.Value, error) {
	got := kindOf(raw)
	if got != want {
		return label.Value{}, &label.TypeMismatchError{Want: want, Got: got}
	}
	switch v := raw.(type) {
	case string:
		return label.String(v), nil
	case bool:
		return label.Bool(v), nil
	case []any:
		s, err := spanOf(v)
		if err != nil {
			return label.Value{}, err
		}
		return label.SpanValue(s), nil
	default:
		n, err := numberOf(raw)
		if err != nil {
			return label.Value{}, err
		}
		return label.Number(n), nil
	}
}

func kindOf(raw any) label.Kind {
	switch raw.(type) {
	case string:
		return label.KindString
	case bool:
		return label.KindBool
	case int, int64, uint64, float64:
		return label.KindNumber
	case []any:
		return label.KindSpan
	default:
		return label.KindInvalid
	}
}

func numberOf(raw any) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("%v is not a number", raw)
}

// spanOf reads a span written as a two-element list [begin, end].
func spanOf(list []any) (label.Span, error) {
	if len(list) != 2 {
		return label.NoSpan, fmt.Errorf("span needs [begin, end], got %d elements", len(list))
	}
	var bounds [2]int
	for i, raw := range list {
		n, err := intOf(raw)
		if err != nil {
			return label.NoSpan, fmt.Errorf("span bound: %w", err)
		}
		bounds[i] = n
	}
	if bounds[0] < 0 || bounds[0] > bounds[1] {
		return label.NoSpan, fmt.Errorf("invalid span [%d, %d)", bounds[0], bounds[1])
	}
	return label.NewSpan(bounds[0], bounds[1]), nil
}

func intOf(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return conv.Int64ToInt(v)
	case float64:
		return conv.FloatToInt(v)
	}
	return 0, fmt.Errorf("%v is not an integer", raw)
}
