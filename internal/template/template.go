// Package template holds the static side of stencil: a parsed fragment plus
// the ordered descriptors of its dynamic positions.
//
// Templates are immutable once built. Instances never touch Content; they
// work on a Clone.
package template

import (
	"fmt"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"golang.org/x/net/html"
)

// Template is a static fragment and the descriptors of its dynamic parts.
type Template struct {
	content     *html.Node
	descriptors []PartDescriptor
}

// New validates descriptors against content and returns a template. Active
// descriptors must be sorted by position; inactive ones may appear anywhere.
func New(content *html.Node, descriptors []PartDescriptor) (*Template, error) {
	if content == nil {
		return nil, stencilerrors.ErrInvalidTemplate("template content is nil")
	}
	last := -1
	for i, d := range descriptors {
		if !d.Active {
			continue
		}
		if d.Position < 0 {
			return nil, stencilerrors.ErrInvalidTemplate(
				fmt.Sprintf("descriptor %d is active with negative position %d", i, d.Position))
		}
		if d.Position < last {
			return nil, stencilerrors.ErrInvalidTemplate(
				fmt.Sprintf("descriptor %d at position %d precedes position %d", i, d.Position, last))
		}
		if d.Kind == KindAttribute && (d.Name == "" || len(d.Strings) < 2) {
			return nil, stencilerrors.ErrInvalidTemplate(
				fmt.Sprintf("attribute descriptor %d needs a name and at least two strings", i))
		}
		last = d.Position
	}

	return &Template{
		content:     content,
		descriptors: append([]PartDescriptor(nil), descriptors...),
	}, nil
}

// Parse builds a template from markup and hand-written descriptors.
func Parse(markup string, descriptors []PartDescriptor) (*Template, error) {
	content, err := dom.ParseFragment(markup)
	if err != nil {
		return nil, stencilerrors.WrapValidation(err, stencilerrors.ErrCodeInvalidTemplate, "parse template markup")
	}
	return New(content, descriptors)
}

// Descriptors returns a copy of the descriptors in traversal order.
func (t *Template) Descriptors() []PartDescriptor {
	return append([]PartDescriptor(nil), t.descriptors...)
}

// ValueCount is the number of values an update of this template consumes.
func (t *Template) ValueCount() int {
	n := 0
	for _, d := range t.descriptors {
		n += d.Slots()
	}
	return n
}

// Clone returns an independent copy of the static tree.
func (t *Template) Clone() *html.Node {
	return dom.Clone(t.content)
}

// Markup renders the static tree.
func (t *Template) Markup() (string, error) {
	return dom.Render(t.content)
}
