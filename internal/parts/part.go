// Package parts defines the dynamic parts a template instance binds and the
// creation strategy that builds them, plus the default strategy.
//
// Every part follows the same two-phase protocol: SetValue only records a
// value and never touches the tree; Commit applies the recorded value. A part
// that was never staged ignores Commit.
package parts

import (
	"context"

	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/template"
	"golang.org/x/net/html"
)

// Part is one dynamic value slot bound to a tree location.
type Part interface {
	// SetValue stages value. Staging twice keeps only the last value.
	SetValue(value any)
	// Commit applies the staged value to the tree.
	Commit() error
}

// AnchoredPart is a node part that has not been placed yet. The binder
// places it right after ref, the sibling preceding the bound node.
type AnchoredPart interface {
	Part
	InsertAfterNode(ref *html.Node)
}

// Processor is the creation strategy a template instance uses to build parts.
type Processor interface {
	HandleTextExpression(opts Options, d template.PartDescriptor) AnchoredPart
	HandleAttributeExpressions(element *html.Node, name string, statics []string,
		opts Options, d template.PartDescriptor) ([]Part, error)
}

// Options is passed to the processor for every part it creates.
type Options struct {
	// Context is used when rendering values that need one, such as templ
	// components.
	Context context.Context
	Logger  logging.Logger
}

func (o Options) context() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

// State is the staging state of a part.
type State int

const (
	// StateIdle means nothing is waiting to be committed.
	StateIdle State = iota
	// StateStaged means a value was staged and the next Commit applies it.
	StateStaged
)

// String returns the state name.
func (s State) String() string {
	if s == StateStaged {
		return "staged"
	}
	return "idle"
}

type sentinel struct{ name string }

func (s *sentinel) String() string { return s.name }

var (
	// NoChange leaves a part exactly as it is when staged.
	NoChange any = &sentinel{"no-change"}
	// Nothing clears a node part and removes an attribute bound by a single
	// bare expression.
	Nothing any = &sentinel{"nothing"}
)

func isEmpty(value any) bool {
	return value == nil || value == Nothing
}
