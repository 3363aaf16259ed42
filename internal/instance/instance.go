// Package instance turns a Template into a live tree with bound parts.
//
// Instantiate clones the template content and walks the clone once. The walk
// steps the cursor to each descriptor's position, resolves every component
// slot it passes on the way, and asks the processor for the parts of each
// descriptor. Later updates only go through the resulting parts list; nothing
// walks the tree again.
package instance

import (
	"context"
	"errors"
	"fmt"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/parts"
	"github.com/conneroisu/stencil/internal/registry"
	"github.com/conneroisu/stencil/internal/slots"
	"github.com/conneroisu/stencil/internal/template"
	"github.com/conneroisu/stencil/internal/walker"
	"golang.org/x/net/html"
)

// Instance is one instantiation of a template. It is not safe for concurrent
// use.
type Instance struct {
	template    *template.Template
	processor   parts.Processor
	scope       *registry.Scope
	fallback    registry.Lookup
	upgrader    Upgrader
	logger      logging.Logger
	partOptions parts.Options
	marker      string
	separator   string
	trace       TraceFunc

	parts        []parts.Part
	instantiated bool
}

// Stats summarizes one instantiation pass.
type Stats struct {
	Parts        int
	Holes        int
	Slots        int
	Materialized int
	Native       int
}

// New returns an instance of t. A nil processor means parts.DefaultProcessor.
func New(t *template.Template, processor parts.Processor, opts ...Option) *Instance {
	if processor == nil {
		processor = parts.DefaultProcessor{}
	}
	i := &Instance{
		template:  t,
		processor: processor,
		logger:    logging.NewNop(),
		marker:    slots.DefaultMarker,
		separator: slots.DefaultSeparator,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.partOptions.Logger == nil {
		i.partOptions.Logger = i.logger
	}
	return i
}

// Template returns the template the instance was built from.
func (i *Instance) Template() *template.Template { return i.template }

// Instantiate builds the live tree and binds every part. It can only be
// called once per instance; a failed pass leaves the instance unusable.
func (i *Instance) Instantiate() (*html.Node, error) {
	root, stats, err := i.instantiate()
	if err != nil {
		return nil, err
	}
	i.logger.Debug(i.context(), "template instantiated",
		"parts", stats.Parts,
		"holes", stats.Holes,
		"slots", stats.Slots,
		"materialized", stats.Materialized,
		"native", stats.Native)
	return root, nil
}

// InstantiateWithStats is Instantiate returning the pass summary as well.
func (i *Instance) InstantiateWithStats() (*html.Node, Stats, error) {
	return i.instantiate()
}

func (i *Instance) instantiate() (*html.Node, Stats, error) {
	var stats Stats
	if i.instantiated {
		return nil, stats, stencilerrors.ErrAlreadyInstantiated()
	}
	i.instantiated = true

	root := i.template.Clone()
	resolver := &slots.Resolver{
		Marker:    i.marker,
		Separator: i.separator,
		Fallback:  i.fallback,
		Logger:    i.logger.WithComponent("slots"),
	}

	resolving := i.scope != nil || i.fallback != nil
	remaining := 0
	if resolving {
		count, err := resolver.Count(root)
		if err != nil {
			return nil, stats, err
		}
		remaining = count
		stats.Slots = count
	}

	descriptors := i.template.Descriptors()
	visit := func(c *walker.Cursor) error {
		if i.trace != nil {
			i.trace(c.Ordinal(), c.Depth(), c.Node())
		}
		if !resolving || remaining == 0 {
			return nil
		}
		name, isSlot := resolver.SlotName(c.Node())
		if !isSlot {
			return nil
		}
		span := walker.Span(c.Node())
		node, outcome, err := resolver.Resolve(c.Node(), i.scope)
		if err != nil {
			return err
		}
		switch outcome {
		case slots.OutcomeMaterialized:
			if err := checkFlattened(descriptors, name, c.Ordinal(), span); err != nil {
				return err
			}
			c.Replace(node)
			c.Shift(span - walker.Span(node))
			stats.Materialized++
			remaining--
		case slots.OutcomeNative:
			stats.Native++
			remaining--
		}
		return nil
	}

	var (
		bound  []parts.Part
		cursor = walker.New(root)
		b      = binder{processor: i.processor, opts: i.partOptions}
	)
	for idx := 0; idx < len(descriptors) || remaining > 0; {
		if idx >= len(descriptors) {
			if err := cursor.Next(); err != nil {
				return nil, stats, stencilerrors.ErrStructuralMisalignment(
					"%d component slots were not reached", remaining,
				).WithContext("remaining", remaining)
			}
			if err := visit(cursor); err != nil {
				return nil, stats, err
			}
			continue
		}

		d := descriptors[idx]
		idx++
		if !d.Active {
			holes := b.holes(d)
			stats.Holes += len(holes)
			bound = append(bound, holes...)
			continue
		}

		if err := cursor.StepTo(d.Position, visit); err != nil {
			return nil, stats, err
		}
		created, err := b.bind(d, cursor.Node())
		if err != nil {
			return nil, stats, err
		}
		stats.Parts += len(created)
		bound = append(bound, created...)
	}

	if i.upgrader != nil {
		if err := i.upgrader.Upgrade(root); err != nil {
			return nil, stats, stencilerrors.Wrap(err, stencilerrors.ErrorTypeInternal,
				stencilerrors.ErrCodeInternalError, "upgrade instantiated tree")
		}
	}

	i.parts = bound
	return root, stats, nil
}

// checkFlattened rejects active descriptors positioned below a materialized
// component slot at ordinal at. The slot's content was flattened to text, so
// the nodes those descriptors point at no longer exist.
func checkFlattened(descriptors []template.PartDescriptor, slot string, at, span int) error {
	for _, d := range descriptors {
		if !d.Active || d.Position <= at || d.Position > at+span {
			continue
		}
		return stencilerrors.ErrUnsupportedBinding(fmt.Sprintf(
			"position %d is inside component slot %q, whose content is flattened to text",
			d.Position, slot,
		)).WithComponent(slot).WithContext("position", d.Position)
	}
	return nil
}

// Parts returns the bound parts, index aligned with the value slice. Holes
// are nil.
func (i *Instance) Parts() []parts.Part {
	return append([]parts.Part(nil), i.parts...)
}

// StageValues stages values[k] on part k. Holes and parts without a value
// are skipped; extra values are ignored. The tree is not touched.
func (i *Instance) StageValues(values []any) {
	for k, part := range i.parts {
		if k >= len(values) {
			return
		}
		if part != nil {
			part.SetValue(values[k])
		}
	}
}

// Commit commits every part in order. Every part is committed even when an
// earlier one fails; the failures are joined.
func (i *Instance) Commit() error {
	var errs []error
	for _, part := range i.parts {
		if part == nil {
			continue
		}
		if err := part.Commit(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		i.logger.Warn(i.context(), errors.Join(errs...), "commit failed", "failures", len(errs))
	}
	return errors.Join(errs...)
}

// Update stages values and commits them.
func (i *Instance) Update(values []any) error {
	i.StageValues(values)
	return i.Commit()
}

func (i *Instance) context() context.Context {
	if i.partOptions.Context == nil {
		return context.Background()
	}
	return i.partOptions.Context
}
