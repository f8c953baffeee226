// Package labeler produces labels for in-memory documents.
//
// A Tokenizer splits text into Token labels, a Dictionary finds phrases from
// a term list, and a Rule turns the matches of a label pattern into new,
// derived labels. A Pipeline runs labelers in order, so later stages can
// match over the labels earlier stages produced.
package labeler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coregx/corelabel/label"
)

// Labeler adds labels to a document.
type Labeler interface {
	Label(ctx context.Context, doc *label.MemDocument) error
}

// Func adapts a function to the Labeler interface
type Func func(ctx context.Context, doc *label.MemDocument) error

// Label implements Labeler.
func (f Func) Label(ctx context.Context, doc *label.MemDocument) error {
	return f(ctx, doc)
}

type named interface {
	Name() string
}

func nameOf(l Labeler, i int) string {
	if n, ok := l.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("stage-%d", i)
}

// Pipeline runs labelers in order over a document.
type Pipeline struct {
	stages []Labeler
	logger *slog.Logger
}

// NewPipeline creates a pipeline of stages. A nil logger discards logs.
func NewPipeline(logger *slog.Logger, stages ...Labeler) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{stages: stages, logger: logger}
}

// Label implements Labeler. It stops at the first failing stage or when ctx
// is done.
func (p *Pipeline) Label(ctx context.Context, doc *label.MemDocument) error {
	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := nameOf(stage, i)
		start := time.Now()
		if err := stage.Label(ctx, doc); err != nil {
			p.logger.Error("labeler stage failed",
				slog.String("stage", name),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("labeler: %s: %w", name, err)
		}
		p.logger.Debug("labeler stage done",
			slog.String("stage", name),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

// Len returns the number of stages
func (p *Pipeline) Len() int {
	return len(p.stages)
}
