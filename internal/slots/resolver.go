// Package slots recognizes component slots in a cloned template and replaces
// them with constructed component elements.
//
// A component slot is an element whose tag contains a reserved marker; the
// part of the tag after the marker and its separator is the slot name, so
// with the defaults <tpl-slot-widget> names "widget". Resolution consults the
// instantiation scope first and an ambient fallback second.
package slots

import (
	"context"
	"io"
	"strings"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/dom"
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/conneroisu/stencil/internal/registry"
	"golang.org/x/net/html"
)

const (
	// DefaultMarker is the reserved tag substring of a component slot.
	DefaultMarker = "tpl-slot"
	// DefaultSeparator separates the marker from the slot name.
	DefaultSeparator = "-"
)

// Outcome reports what Resolve did with a node.
type Outcome int

const (
	// OutcomeNotSlot means the node is not a component slot.
	OutcomeNotSlot Outcome = iota
	// OutcomeMaterialized means the slot was replaced by a new element.
	OutcomeMaterialized
	// OutcomeNative means the fallback registry reports the host builds the
	// element itself; the slot was left in place.
	OutcomeNative
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotSlot:
		return "not-slot"
	case OutcomeMaterialized:
		return "materialized"
	case OutcomeNative:
		return "native"
	default:
		return "unknown"
	}
}

// Resolver detects and materializes component slots.
type Resolver struct {
	Marker    string
	Separator string
	// Fallback is consulted when the scope does not declare a slot name.
	Fallback registry.Lookup
	Logger   logging.Logger
}

// NewResolver returns a resolver using the default marker and separator.
func NewResolver(fallback registry.Lookup, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		Marker:    DefaultMarker,
		Separator: DefaultSeparator,
		Fallback:  fallback,
		Logger:    logger.WithComponent("slots"),
	}
}

func (r *Resolver) logger() logging.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

// SlotName returns the slot name of n and whether n is a component slot.
func (r *Resolver) SlotName(n *html.Node) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	return r.nameFromTag(n.Data)
}

func (r *Resolver) nameFromTag(tag string) (string, bool) {
	idx := strings.Index(tag, r.Marker)
	if r.Marker == "" || idx < 0 {
		return "", false
	}
	return strings.TrimPrefix(tag[idx+len(r.Marker):], r.Separator), true
}

// Count pre-scans the markup of root and returns how many component slots it
// holds. Nested template content is included.
func (r *Resolver) Count(root *html.Node) (int, error) {
	markup, err := dom.Render(root)
	if err != nil {
		return 0, err
	}

	count := 0
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return count, nil
			}
			return 0, stencilerrors.NewInternalError(
				stencilerrors.ErrCodeInternalError, "scan component slots", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if _, ok := r.nameFromTag(string(name)); ok {
				count++
			}
		}
	}
}

// Resolve materializes n when it is a component slot. On OutcomeMaterialized
// the returned node has taken n's place in the tree and n is detached; the
// caller must move any reference it holds to the returned node. For every
// other outcome the returned node is n.
func (r *Resolver) Resolve(n *html.Node, scope *registry.Scope) (*html.Node, Outcome, error) {
	name, ok := r.SlotName(n)
	if !ok {
		return n, OutcomeNotSlot, nil
	}

	ctor, found := scope.Lookup(name)
	if !found && r.Fallback != nil {
		ctor, found = r.Fallback.Lookup(name)
		if found && ctor == nil {
			r.logger().Debug(context.Background(), "component slot handled natively", "slot", name)
			return n, OutcomeNative, nil
		}
	}
	if !found || ctor == nil {
		return nil, OutcomeNotSlot, stencilerrors.ErrUnresolvedComponent(name)
	}

	instance, err := ctor(scope)
	if err != nil {
		return nil, OutcomeNotSlot, stencilerrors.ErrInvalidComponent(name, err)
	}
	if instance == nil || instance.Type != html.ElementNode {
		return nil, OutcomeNotSlot, stencilerrors.ErrInvalidComponent(name, nil)
	}
	if instance.Parent != nil {
		instance.Parent.RemoveChild(instance)
	}

	dom.SetTextContent(instance, dom.TextContent(n))
	moved := dom.MoveAttributes(n, instance)
	if err := dom.Replace(n, instance); err != nil {
		return nil, OutcomeNotSlot, stencilerrors.ErrStructuralMisalignment(
			"component slot %q is not attached to the tree", name)
	}

	r.logger().Debug(context.Background(), "component slot materialized",
		"slot", name,
		"tag", instance.Data,
		"attributes", moved)
	return instance, OutcomeMaterialized, nil
}
