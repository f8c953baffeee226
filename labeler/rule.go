package labeler

import (
	"context"
	"fmt"
	"slices"

	"github.com/coregx/corelabel"
	"github.com/coregx/corelabel/label"
)

// RegisterDerived registers a type for rule output with the properties
// rule and text.
func RegisterDerived(reg *label.Registry, name string) (*label.Type, error) {
	return reg.Register(name,
		label.AttrProperty("rule", label.KindString),
		label.AttrProperty("text", label.KindString),
	)
}

// Rule labels the matches of a pattern. Each match yields one label of the
// output type over the whole match, or over a named group when Group is
// set. Matches where the group did not participate yield nothing.
type Rule struct {
	name    string
	pattern *corelabel.Pattern
	output  *label.Type
	group   string
}

// NewRule creates a rule. output should be registered with RegisterDerived;
// group may be empty.
func NewRule(name string, p *corelabel.Pattern, output *label.Type, group string) (*Rule, error) {
	if p == nil || output == nil {
		return nil, fmt.Errorf("labeler: rule %q needs a pattern and an output type", name)
	}
	if group != "" && !slices.Contains(p.GroupNames(), group) {
		return nil, &label.NameError{Kind: "group", Name: group}
	}
	return &Rule{name: name, pattern: p, output: output, group: group}, nil
}

// Name returns the stage name used in logs
func (r *Rule) Name() string {
	return "rule " + r.name
}

// Label implements Labeler.
func (r *Rule) Label(ctx context.Context, doc *label.MemDocument) error {
	matches, err := r.pattern.FindAll(doc, -1)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	labels := make([]label.Label, 0, len(matches))
	for _, m := range matches {
		span := m.Span
		if r.group != "" {
			span = m.Group(r.group)
		}
		if !span.Valid() {
			continue
		}
		labels = append(labels, label.New(r.output, span, label.Attrs{
			"rule": label.String(r.name),
			"text": label.String(doc.Covered(span)),
		}))
	}
	return doc.Add(labels...)
}
